package blueprint

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"frostform/internal/ident"
	"frostform/internal/resource"
)

// StateProvider supplies the remote state manifest a plan converges from.
type StateProvider interface {
	ExportState(ctx context.Context) (*Manifest, error)
}

// Executor runs one rendered DDL statement against the warehouse.
type Executor interface {
	Execute(ctx context.Context, statement string) error
}

// Plan is an ordered sequence of operations converging remote state onto the
// blueprint's desired state. Order follows dependency ranks only, never the
// action type.
type Plan struct {
	Operations []Operation `json:"operations"`
}

// IsEmpty reports whether the plan has nothing to do.
func (p *Plan) IsEmpty() bool { return len(p.Operations) == 0 }

// Summary counts the operations per action.
func (p *Plan) Summary() (adds, changes, removes int) {
	for _, op := range p.Operations {
		switch op.Action {
		case ActionAdd:
			adds++
		case ActionChange:
			changes++
		case ActionRemove:
			removes++
		}
	}
	return adds, changes, removes
}

// Plan generates the desired manifest, fetches remote state, and returns the
// ordered operations needed to converge.
func (b *Blueprint) Plan(ctx context.Context, provider StateProvider) (*Plan, error) {
	desired, err := b.GenerateManifest()
	if err != nil {
		return nil, err
	}
	remote, err := provider.ExportState(ctx)
	if err != nil {
		return nil, fmt.Errorf("export remote state: %w", err)
	}
	return buildPlan(remote, desired)
}

// buildPlan diffs remote against desired, narrows change payloads to
// alterable fields, and sorts operations by dependency rank.
func buildPlan(remote, desired *Manifest) (*Plan, error) {
	nodes := append([]string{}, remote.URNs()...)
	nodes = append(nodes, desired.URNs()...)
	refs := append([][2]string{}, remote.Refs()...)
	refs = append(refs, desired.Refs()...)

	ranks, err := topologicalRanks(nodes, refs)
	if err != nil {
		return nil, err
	}

	var ops []Operation
	for _, op := range diffManifests(remote, desired) {
		if op.Action == ActionChange {
			urn, err := ident.Parse(op.URN)
			if err != nil {
				return nil, err
			}
			kind, err := resource.ParseKind(urn.Kind)
			if err != nil {
				return nil, err
			}
			op.Data = resource.FetchableFields(kind, op.Data)
			if len(op.Data) == 0 {
				continue
			}
		}
		ops = append(ops, op)
	}

	sort.SliceStable(ops, func(i, j int) bool {
		return ranks[ops[i].URN] < ranks[ops[j].URN]
	})
	return &Plan{Operations: ops}, nil
}

// Apply executes every plan operation in order. The first failure aborts the
// run; operations already executed stay applied.
func Apply(ctx context.Context, exec Executor, plan *Plan) error {
	runID := uuid.NewString()
	adds, changes, removes := plan.Summary()
	slog.InfoContext(ctx, "applying plan",
		"run_id", runID, "add", adds, "change", changes, "remove", removes)

	for _, op := range plan.Operations {
		statement, err := renderOperation(op)
		if err != nil {
			return err
		}
		slog.DebugContext(ctx, "executing", "run_id", runID, "urn", op.URN, "action", op.Action)
		if err := exec.Execute(ctx, statement); err != nil {
			return fmt.Errorf("%s %s: %w", op.Action, op.URN, err)
		}
	}
	slog.InfoContext(ctx, "plan applied", "run_id", runID, "operations", len(plan.Operations))
	return nil
}

func renderOperation(op Operation) (string, error) {
	urn, err := ident.Parse(op.URN)
	if err != nil {
		return "", err
	}
	kind, err := resource.ParseKind(urn.Kind)
	if err != nil {
		return "", err
	}
	switch op.Action {
	case ActionAdd:
		return resource.RenderCreate(kind, urn.FQN, op.Data)
	case ActionChange:
		return resource.RenderUpdate(kind, urn.FQN, op.Data)
	case ActionRemove:
		return resource.RenderDelete(kind, urn.FQN, op.Data)
	default:
		return "", fmt.Errorf("%w: %q on %s", ErrUnexpectedAction, op.Action, op.URN)
	}
}

// Destroy drops every entry of a manifest in reverse dependency order, so
// dependents fall before the objects they depend on.
func Destroy(ctx context.Context, exec Executor, manifest *Manifest) error {
	ranks, err := topologicalRanks(manifest.URNs(), manifest.Refs())
	if err != nil {
		return err
	}
	urns := append([]string{}, manifest.URNs()...)
	sort.SliceStable(urns, func(i, j int) bool {
		return ranks[urns[i]] > ranks[urns[j]]
	})

	runID := uuid.NewString()
	slog.InfoContext(ctx, "destroying manifest", "run_id", runID, "entries", len(urns))

	for _, raw := range urns {
		urn, err := ident.Parse(raw)
		if err != nil {
			return err
		}
		kind, err := resource.ParseKind(urn.Kind)
		if err != nil {
			return err
		}
		entry, ok := manifest.Entry(raw)
		if !ok {
			continue
		}
		payloads := []map[string]any{entry.Data}
		if entry.IsList() {
			payloads = entry.Items
		}
		for _, data := range payloads {
			statement, err := resource.RenderDelete(kind, urn.FQN, data)
			if err != nil {
				return err
			}
			if err := exec.Execute(ctx, statement); err != nil {
				return fmt.Errorf("remove %s: %w", raw, err)
			}
		}
	}
	slog.InfoContext(ctx, "destroy complete", "run_id", runID)
	return nil
}
