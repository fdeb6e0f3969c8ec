// Package resource defines the catalog of managed warehouse resource kinds:
// typed constructors, attribute schemas with defaults, scope kinds, and the
// lifecycle dispatch table that renders DDL for each kind.
package resource

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a type of managed resource. The tag doubles as the kind
// segment of a URN.
type Kind string

// Resource kind tags.
const (
	KindAccount   Kind = "account"
	KindDatabase  Kind = "database"
	KindSchema    Kind = "schema"
	KindTable     Kind = "table"
	KindView      Kind = "view"
	KindWarehouse Kind = "warehouse"
	KindRole      Kind = "role"
	KindUser      Kind = "user"
	KindGrant     Kind = "grant"
	KindRoleGrant Kind = "role_grant"
	KindAlert     Kind = "alert"
	KindSecret    Kind = "secret"
	KindStream    Kind = "stream"
	KindTag       Kind = "tag"
	KindTask      Kind = "task"
)

// ErrUnknownKind is returned when a kind tag does not match the catalog.
var ErrUnknownKind = errors.New("unknown resource kind")

// ParseKind normalizes a raw kind tag (trim, lower-case, spaces to
// underscores) and matches it against the catalog.
func ParseKind(raw string) (Kind, error) {
	tag := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	k := Kind(tag)
	if _, ok := handlers[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return k, nil
}

// String returns the kind tag.
func (k Kind) String() string {
	return string(k)
}

// ScopeKind is the ancestry level a resource's address is relative to.
type ScopeKind int

// Scope kinds, outermost first.
const (
	ScopeNone ScopeKind = iota
	ScopeOrganization
	ScopeAccount
	ScopeDatabase
	ScopeSchema
)

// String returns a human-readable scope name.
func (s ScopeKind) String() string {
	switch s {
	case ScopeOrganization:
		return "organization"
	case ScopeAccount:
		return "account"
	case ScopeDatabase:
		return "database"
	case ScopeSchema:
		return "schema"
	default:
		return "none"
	}
}
