// Package ddl assembles warehouse DDL statement text: identifier quoting,
// literal escaping, and keyword/value property rendering.
package ddl

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// identifierRe allows alphanumeric + underscores + dollar signs, starting
// with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

// maxIdentifierLen is the maximum length allowed for a SQL identifier.
const maxIdentifierLen = 255

// ValidateIdentifier checks that name is a safe SQL identifier:
//   - Non-empty
//   - At most 255 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_$]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_$]*")
	}
	return nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
//
// Always quotes unconditionally — the caller should validate first if needed.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// Tidy joins the non-empty parts of a statement with single spaces.
func Tidy(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// EqString renders KEYWORD = 'value', or "" when value is empty.
func EqString(keyword, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s = %s", keyword, QuoteLiteral(value))
}

// EqRaw renders KEYWORD = value without quoting, or "" when value is empty.
// Used for identifiers and numeric or keyword values already in SQL form.
func EqRaw(keyword, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s = %s", keyword, value)
}

// EqInt renders KEYWORD = n.
func EqInt(keyword string, n int) string {
	return fmt.Sprintf("%s = %d", keyword, n)
}

// EqBool renders KEYWORD = TRUE|FALSE.
func EqBool(keyword string, v bool) string {
	return fmt.Sprintf("%s = %s", keyword, strings.ToUpper(fmt.Sprintf("%t", v)))
}

// Flag renders the keyword itself when set, "" otherwise.
func Flag(keyword string, set bool) string {
	if !set {
		return ""
	}
	return keyword
}

// Tags renders TAG (key = 'value', ...) with keys in stable order, or ""
// for an empty map.
func Tags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s = %s", k, QuoteLiteral(tags[k])))
	}
	return fmt.Sprintf("TAG (%s)", strings.Join(pairs, ", "))
}
