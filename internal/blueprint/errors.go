package blueprint

import "errors"

// Fatal planning conditions. Every one of them aborts the current
// plan/apply/destroy call; none is converted into a no-op plan step.
var (
	// ErrScopeConflict is returned when a second account-defining resource
	// is staged.
	ErrScopeConflict = errors.New("scope conflict")

	// ErrOrphanedResource is returned when a scoped resource has no
	// ancestor context and the blueprint supplies no default.
	ErrOrphanedResource = errors.New("orphaned resource")

	// ErrCyclicDependency is returned when the dependency graph contains a
	// cycle the sequencer cannot order.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrUnexpectedAction is returned when a plan carries an action other
	// than add, change, or remove. It signals a defect in the diff engine.
	ErrUnexpectedAction = errors.New("unexpected plan action")
)
