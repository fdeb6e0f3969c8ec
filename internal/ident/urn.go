package ident

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedIdentifier is returned when a string does not match the
// canonical URN grammar.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// urnRe captures the four URN segments: organization, account locator,
// resource kind tag, and qualified name path.
var urnRe = regexp.MustCompile(`^urn:([^:]*):([^:]*):([a-z][a-z0-9_]*)/(.+)$`)

// FQN is a fully qualified name path. Database and Schema are zero for
// resources scoped above their level.
type FQN struct {
	Database ResourceName
	Schema   ResourceName
	Name     ResourceName
}

// String joins the non-empty path segments with dots.
func (f FQN) String() string {
	parts := make([]string, 0, 3)
	if !f.Database.IsZero() {
		parts = append(parts, f.Database.String())
	}
	if !f.Schema.IsZero() {
		parts = append(parts, f.Schema.String())
	}
	parts = append(parts, f.Name.String())
	return strings.Join(parts, ".")
}

// Equal compares path segments with resource-name equality.
func (f FQN) Equal(other FQN) bool {
	return f.Database.Equal(other.Database) &&
		f.Schema.Equal(other.Schema) &&
		f.Name.Equal(other.Name)
}

// URN is the stable identity of a resource: kind tag, qualified name path,
// and account locator. URNs are immutable once constructed and serialize to
// the canonical form urn:<org>:<locator>:<kind>/<fqn>.
type URN struct {
	Kind           string
	FQN            FQN
	Organization   string
	AccountLocator string
}

// String renders the canonical URN form.
func (u URN) String() string {
	return fmt.Sprintf("urn:%s:%s:%s/%s", u.Organization, u.AccountLocator, u.Kind, u.FQN)
}

// Equal compares two URNs using resource-name equality for the path, since
// quoting may differ between locally declared and remote-originated names.
func (u URN) Equal(other URN) bool {
	return u.Kind == other.Kind &&
		strings.EqualFold(u.AccountLocator, other.AccountLocator) &&
		strings.EqualFold(u.Organization, other.Organization) &&
		u.FQN.Equal(other.FQN)
}

// Parse parses the canonical URN string form.
func Parse(s string) (URN, error) {
	m := urnRe.FindStringSubmatch(s)
	if m == nil {
		return URN{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, s)
	}
	fqn, err := parseFQN(m[4])
	if err != nil {
		return URN{}, fmt.Errorf("%w: %q: %v", ErrMalformedIdentifier, s, err)
	}
	return URN{
		Organization:   m[1],
		AccountLocator: m[2],
		Kind:           m[3],
		FQN:            fqn,
	}, nil
}

// parseFQN splits a dotted path into up to three segments, honoring quoted
// segments that may themselves contain dots.
func parseFQN(s string) (FQN, error) {
	segments, err := splitQualified(s)
	if err != nil {
		return FQN{}, err
	}
	switch len(segments) {
	case 1:
		return FQN{Name: segments[0]}, nil
	case 2:
		return FQN{Database: segments[0], Name: segments[1]}, nil
	case 3:
		return FQN{Database: segments[0], Schema: segments[1], Name: segments[2]}, nil
	default:
		return FQN{}, fmt.Errorf("path has %d segments, want 1-3", len(segments))
	}
}

// splitQualified splits on dots outside double quotes.
func splitQualified(s string) ([]ResourceName, error) {
	var segments []ResourceName
	var cur strings.Builder
	inQuotes := false
	flush := func() error {
		raw := cur.String()
		if raw == "" {
			return fmt.Errorf("empty path segment")
		}
		segments = append(segments, NewResourceName(raw))
		cur.Reset()
		return nil
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == '.' && !inQuotes:
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return segments, nil
}
