package resource

import (
	"frostform/internal/ident"
)

// Resource is a declared, attribute-bearing node in the resource graph.
// Attributes follow the kind's schema with defaults applied at construction;
// unset optional fields are omitted so they never appear in a manifest.
type Resource struct {
	kind     Kind
	name     ident.ResourceName
	database ident.ResourceName
	schema   ident.ResourceName
	implicit bool
	attrs    map[string]any
	refs     []*Resource
}

func newResource(kind Kind, name string, attrs map[string]any) *Resource {
	return &Resource{
		kind:  kind,
		name:  ident.NewResourceName(name),
		attrs: attrs,
	}
}

// Kind returns the resource kind tag.
func (r *Resource) Kind() Kind { return r.kind }

// Name returns the resource's own name.
func (r *Resource) Name() ident.ResourceName { return r.name }

// Database returns the declared or resolved database ancestor (zero if none).
func (r *Resource) Database() ident.ResourceName { return r.database }

// Schema returns the declared or resolved schema ancestor (zero if none).
func (r *Resource) Schema() ident.ResourceName { return r.schema }

// Implicit reports whether the resource is a structural byproduct (e.g. the
// default PUBLIC schema of a new database). Implicit resources never appear
// standalone in a manifest.
func (r *Resource) Implicit() bool { return r.implicit }

// Scope returns the kind's scope level.
func (r *Resource) Scope() ScopeKind { return handlers[r.kind].scope }

// SerializesAsList reports whether multiple instances of the kind collapse
// under one identifier as a list.
func (r *Resource) SerializesAsList() bool { return handlers[r.kind].list }

// Refs returns the declared dependency references.
func (r *Resource) Refs() []*Resource { return r.refs }

// Requires records explicit dependency edges to other resources. The
// dependencies are staged together with the resource and ordered before it
// in any plan.
func (r *Resource) Requires(deps ...*Resource) {
	for _, d := range deps {
		if d != nil {
			r.refs = append(r.refs, d)
		}
	}
}

// HasScope reports whether the ancestry the kind's scope requires has been
// declared or resolved.
func (r *Resource) HasScope() bool {
	switch r.Scope() {
	case ScopeDatabase:
		return !r.database.IsZero()
	case ScopeSchema:
		return !r.database.IsZero() && !r.schema.IsZero()
	default:
		return true
	}
}

// SetDatabase assigns the database ancestor. Used by scope resolution and by
// container helpers; it never overwrites a declared value.
func (r *Resource) SetDatabase(name ident.ResourceName) {
	if r.database.IsZero() {
		r.database = name
	}
}

// SetSchema assigns the schema ancestor. It never overwrites a declared value.
func (r *Resource) SetSchema(name ident.ResourceName) {
	if r.schema.IsZero() {
		r.schema = name
	}
}

// FQN builds the qualified name path for the resource's scope level.
func (r *Resource) FQN() ident.FQN {
	switch r.Scope() {
	case ScopeDatabase:
		return ident.FQN{Database: r.database, Name: r.name}
	case ScopeSchema:
		return ident.FQN{Database: r.database, Schema: r.schema, Name: r.name}
	default:
		return ident.FQN{Name: r.name}
	}
}

// Attributes returns the rendered attribute mapping. The map is shared, not
// copied; callers treat it as read-only.
func (r *Resource) Attributes() map[string]any { return r.attrs }

// setAttr records an attribute, skipping empty strings, nil maps, and nil
// slices so unset fields stay out of the manifest.
func setAttr(attrs map[string]any, key string, value any) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return
		}
	case map[string]string:
		if len(v) == 0 {
			return
		}
	case []string:
		if len(v) == 0 {
			return
		}
	case nil:
		return
	}
	attrs[key] = value
}
