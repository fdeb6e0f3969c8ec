package blueprint

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Reserved manifest keys carrying planning side channels. They are stripped
// when a manifest is treated as pure state.
const (
	refsKey = "_refs"
	urnsKey = "_urns"
)

// Entry is one manifest value: a single attribute mapping, or an ordered
// sequence of attribute mappings for list-serializing kinds.
type Entry struct {
	Data  map[string]any
	Items []map[string]any
}

// IsList reports whether the entry serializes as a list.
func (e Entry) IsList() bool { return e.Items != nil }

// Manifest maps identifier strings to attribute data, plus the dependency
// edge list (_refs) and insertion order (_urns) used during planning.
type Manifest struct {
	entries map[string]Entry
	urns    []string
	refs    [][2]string
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{entries: map[string]Entry{}}
}

// Set inserts a single-valued entry. Duplicate identifiers keep the first
// insertion: multiple declarations can legitimately converge on one
// identifier. Values are canonicalized on the way in so entries compare
// cleanly no matter where they came from.
func (m *Manifest) Set(urn string, data map[string]any) {
	if _, ok := m.entries[urn]; ok {
		return
	}
	m.entries[urn] = Entry{Data: normalizeMap(data)}
	m.urns = append(m.urns, urn)
}

// Append inserts an item under a list-serializing identifier, creating the
// entry on first use.
func (m *Manifest) Append(urn string, item map[string]any) {
	item = normalizeMap(item)
	e, ok := m.entries[urn]
	if !ok {
		m.entries[urn] = Entry{Items: []map[string]any{item}}
		m.urns = append(m.urns, urn)
		return
	}
	e.Items = append(e.Items, item)
	m.entries[urn] = e
}

// Entry returns the entry for an identifier.
func (m *Manifest) Entry(urn string) (Entry, bool) {
	e, ok := m.entries[urn]
	return e, ok
}

// Len returns the number of entries.
func (m *Manifest) Len() int { return len(m.entries) }

// URNs returns all identifier strings in insertion order.
func (m *Manifest) URNs() []string { return m.urns }

// Refs returns the dependency edge list as (dependent, dependency) pairs.
func (m *Manifest) Refs() [][2]string { return m.refs }

// AddRef appends a dependency edge.
func (m *Manifest) AddRef(from, to string) {
	m.refs = append(m.refs, [2]string{from, to})
}

// MarshalJSON serializes the manifest with the reserved _refs and _urns
// keys alongside the identifier entries.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.entries)+2)
	for urn, e := range m.entries {
		if e.IsList() {
			out[urn] = e.Items
		} else {
			out[urn] = e.Data
		}
	}
	refs := make([][2]string, 0, len(m.refs))
	refs = append(refs, m.refs...)
	out[refsKey] = refs
	out[urnsKey] = m.urns
	return json.Marshal(out)
}

// UnmarshalJSON loads a manifest from its JSON form. Set and Append
// canonicalize the decoded values, so a loaded snapshot compares cleanly
// against a freshly generated manifest.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.entries = map[string]Entry{}
	m.urns = nil
	m.refs = nil

	if rawRefs, ok := raw[refsKey]; ok {
		if err := json.Unmarshal(rawRefs, &m.refs); err != nil {
			return fmt.Errorf("%s: %w", refsKey, err)
		}
		delete(raw, refsKey)
	}
	var order []string
	if rawURNs, ok := raw[urnsKey]; ok {
		if err := json.Unmarshal(rawURNs, &order); err != nil {
			return fmt.Errorf("%s: %w", urnsKey, err)
		}
		delete(raw, urnsKey)
	}
	if order == nil {
		order = make([]string, 0, len(raw))
		for urn := range raw {
			order = append(order, urn)
		}
		sort.Strings(order)
	}

	for _, urn := range order {
		rawEntry, ok := raw[urn]
		if !ok {
			continue
		}
		var items []map[string]any
		if err := json.Unmarshal(rawEntry, &items); err == nil {
			for _, item := range items {
				m.Append(urn, item)
			}
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			return fmt.Errorf("entry %s: %w", urn, err)
		}
		m.Set(urn, entry)
	}
	return nil
}

// normalizeMap canonicalizes attribute values: integral numbers become int,
// slices become []any, and string-keyed maps become map[string]any. A
// generated manifest and one decoded from a JSON snapshot then share one
// value shape, so the structural diff never reports a change on an equal
// field that merely round-tripped through serialization.
func normalizeMap(data map[string]any) map[string]any {
	for k, v := range data {
		data[k] = normalizeValue(v)
	}
	return data
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int:
		return val
	case float64:
		if val == float64(int64(val)) {
			return int(val)
		}
		return val
	case map[string]any:
		return normalizeMap(val)
	case []any:
		for i := range val {
			val[i] = normalizeValue(val[i])
		}
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = normalizeValue(iter.Value().Interface())
			}
			return out
		}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint())
	}
	return v
}
