// Package blueprint stages declared resources into a dependency graph,
// resolves their scope, generates a manifest of desired state, and turns the
// difference against remote state into an ordered, executable plan.
package blueprint

import (
	"fmt"

	"frostform/internal/ident"
	"frostform/internal/resource"
)

// Context carries the session placement a blueprint resolves unscoped
// resources against: the organization and account the identifiers are minted
// under, plus optional default database and schema ancestors.
type Context struct {
	Organization string
	Account      string
	Database     string
	Schema       string
}

// Blueprint accumulates declared resources and plans their reconciliation.
type Blueprint struct {
	name         string
	organization string
	account      string
	database     ident.ResourceName
	schema       ident.ResourceName

	staged     []*resource.Resource
	seen       map[*resource.Resource]bool
	accountRes *resource.Resource
}

// New returns an empty blueprint planning against the given context.
func New(name string, ctx Context) *Blueprint {
	return &Blueprint{
		name:         name,
		organization: ctx.Organization,
		account:      ctx.Account,
		database:     ident.NewResourceName(ctx.Database),
		schema:       ident.NewResourceName(ctx.Schema),
		seen:         map[*resource.Resource]bool{},
	}
}

// Add stages resources and, recursively, everything they reference.
// Staging is idempotent per resource instance. At most one account-defining
// resource may be staged; a second one returns ErrScopeConflict.
func (b *Blueprint) Add(resources ...*resource.Resource) error {
	for _, r := range resources {
		if err := b.stage(r); err != nil {
			return err
		}
	}
	return nil
}

func (b *Blueprint) stage(r *resource.Resource) error {
	if r == nil || b.seen[r] {
		return nil
	}
	if r.Kind() == resource.KindAccount {
		if b.accountRes != nil && b.accountRes != r {
			return fmt.Errorf("%w: account %s already staged, cannot also manage %s",
				ErrScopeConflict, b.accountRes.Name(), r.Name())
		}
		b.accountRes = r
		if b.account == "" {
			b.account = r.Name().String()
		}
	}
	b.seen[r] = true
	for _, dep := range r.Refs() {
		if err := b.stage(dep); err != nil {
			return err
		}
	}
	b.staged = append(b.staged, r)
	return nil
}

// finalizeScope fills missing ancestry from the blueprint defaults. A scoped
// resource still missing ancestry afterwards has nowhere to live.
func (b *Blueprint) finalizeScope() error {
	for _, r := range b.staged {
		switch r.Scope() {
		case resource.ScopeDatabase:
			r.SetDatabase(b.database)
		case resource.ScopeSchema:
			r.SetDatabase(b.database)
			r.SetSchema(b.schema)
		}
		if !r.HasScope() {
			return fmt.Errorf("%w: %s %s has no %s context and the blueprint provides no default",
				ErrOrphanedResource, r.Kind(), r.Name(), r.Scope())
		}
	}
	return nil
}

// GenerateManifest resolves scope and renders the desired-state manifest.
// Implicit resources contribute no entry of their own but still appear as
// dependency endpoints, so a database's default schema orders correctly
// without being managed.
func (b *Blueprint) GenerateManifest() (*Manifest, error) {
	if err := b.finalizeScope(); err != nil {
		return nil, err
	}
	manifest := NewManifest()
	for _, r := range b.staged {
		urn := b.urnFor(r).String()
		if !r.Implicit() {
			data := cloneAttrs(r.Attributes())
			if r.SerializesAsList() {
				manifest.Append(urn, data)
			} else {
				manifest.Set(urn, data)
			}
		}
		for _, dep := range r.Refs() {
			manifest.AddRef(urn, b.urnFor(dep).String())
		}
	}
	return manifest, nil
}

func (b *Blueprint) urnFor(r *resource.Resource) ident.URN {
	return ident.URN{
		Organization:   b.organization,
		AccountLocator: b.account,
		Kind:           r.Kind().String(),
		FQN:            r.FQN(),
	}
}

func cloneAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
