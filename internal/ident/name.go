// Package ident models the addressing scheme for warehouse resources:
// quote-aware resource names, qualified name paths, and URNs.
package ident

import (
	"regexp"
	"strings"

	"frostform/internal/ddl"
)

// unquotedRe matches names that are valid without quoting. Anything else is
// stored in quoted form and compared case-sensitively.
var unquotedRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

// metadataRe matches names as the warehouse reports them for unquoted
// identifiers: already upper-cased.
var metadataRe = regexp.MustCompile(`^[A-Z_][A-Z0-9_$]*$`)

// ResourceName is a warehouse object name. Unquoted names are
// case-insensitive and render upper-cased; quoted names keep their exact
// spelling. The zero value is the empty name.
type ResourceName struct {
	name   string
	quoted bool
}

// NewResourceName builds a ResourceName from a declared name. A name wrapped
// in double quotes is taken literally; a bare name that doesn't survive as a
// plain identifier is treated as quoted.
func NewResourceName(raw string) ResourceName {
	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		return ResourceName{name: raw[1 : len(raw)-1], quoted: true}
	}
	if raw != "" && !unquotedRe.MatchString(raw) {
		return ResourceName{name: raw, quoted: true}
	}
	return ResourceName{name: raw}
}

// NameFromMetadata builds a ResourceName from a name returned by the remote
// system, which reports unquoted identifiers upper-cased and everything else
// verbatim without quotes.
func NameFromMetadata(raw string) ResourceName {
	if metadataRe.MatchString(raw) {
		return ResourceName{name: raw}
	}
	return ResourceName{name: raw, quoted: true}
}

// IsZero reports whether the name is empty.
func (n ResourceName) IsZero() bool {
	return n.name == ""
}

// Quoted reports whether the name compares case-sensitively.
func (n ResourceName) Quoted() bool {
	return n.quoted
}

// String renders the canonical form: quoted names wrapped in double quotes
// with embedded quotes escaped, unquoted names upper-cased.
func (n ResourceName) String() string {
	if n.quoted {
		return ddl.QuoteIdentifier(n.name)
	}
	return strings.ToUpper(n.name)
}

// Equal compares two names. Unquoted sides fold to upper case before the
// comparison, so ResourceName("abc") equals ResourceName(`"ABC"`) but
// ResourceName("ABC") does not equal ResourceName(`"abc"`).
func (n ResourceName) Equal(other ResourceName) bool {
	left := n.name
	if !n.quoted {
		left = strings.ToUpper(left)
	}
	right := other.name
	if !other.quoted {
		right = strings.ToUpper(right)
	}
	return left == right
}
