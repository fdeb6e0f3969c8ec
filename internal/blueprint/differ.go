package blueprint

import (
	"reflect"
	"sort"
)

// Action is one of the three diff operation types.
type Action string

// Diff actions.
const (
	ActionAdd    Action = "add"
	ActionChange Action = "change"
	ActionRemove Action = "remove"
)

// Operation is one add/change/remove instruction between two manifests. Data
// is a full attribute mapping for add, a sparse single-field mapping for
// change, and the removed value (entry data or list item) for remove.
type Operation struct {
	Action Action         `json:"action"`
	URN    string         `json:"urn"`
	Data   map[string]any `json:"data"`
}

// diffManifests compares remote state against the desired manifest and
// returns the operations needed to converge. The comparison is one level
// deep: mapping entries produce per-field sparse changes, list entries
// produce set-style item adds/removes, and nested values compare by whole
// value. Deeper recursion would change which fields get reported and break
// the field-level ALTER contract.
func diffManifests(remote, desired *Manifest) []Operation {
	var ops []Operation

	for _, urn := range remote.URNs() {
		if _, ok := desired.Entry(urn); ok {
			continue
		}
		old, _ := remote.Entry(urn)
		ops = append(ops, removeOps(urn, old)...)
	}

	for _, urn := range desired.URNs() {
		want, _ := desired.Entry(urn)
		old, ok := remote.Entry(urn)
		if !ok {
			ops = append(ops, addOps(urn, want)...)
			continue
		}
		ops = append(ops, compareEntries(urn, old, want)...)
	}

	return ops
}

func removeOps(urn string, e Entry) []Operation {
	if e.IsList() {
		ops := make([]Operation, 0, len(e.Items))
		for _, item := range e.Items {
			ops = append(ops, Operation{Action: ActionRemove, URN: urn, Data: item})
		}
		return ops
	}
	return []Operation{{Action: ActionRemove, URN: urn, Data: e.Data}}
}

func addOps(urn string, e Entry) []Operation {
	if e.IsList() {
		ops := make([]Operation, 0, len(e.Items))
		for _, item := range e.Items {
			ops = append(ops, Operation{Action: ActionAdd, URN: urn, Data: item})
		}
		return ops
	}
	return []Operation{{Action: ActionAdd, URN: urn, Data: e.Data}}
}

// compareEntries diffs two entries present under the same identifier.
func compareEntries(urn string, old, want Entry) []Operation {
	if old.IsList() != want.IsList() {
		// Shape changed between remote and desired. Replace wholesale.
		return append(removeOps(urn, old), addOps(urn, want)...)
	}
	if want.IsList() {
		return compareLists(urn, old.Items, want.Items)
	}
	return compareMaps(urn, old.Data, want.Data)
}

// compareMaps emits one change operation per differing field. Removed fields
// carry nil, changed and added fields carry the new value.
func compareMaps(urn string, old, want map[string]any) []Operation {
	keys := make([]string, 0, len(old)+len(want))
	seen := make(map[string]bool, len(old)+len(want))
	for k := range old {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range want {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var ops []Operation
	for _, k := range keys {
		oldVal, inOld := old[k]
		newVal, inWant := want[k]
		switch {
		case inOld && !inWant:
			ops = append(ops, Operation{Action: ActionChange, URN: urn, Data: map[string]any{k: nil}})
		case !inOld && inWant:
			ops = append(ops, Operation{Action: ActionChange, URN: urn, Data: map[string]any{k: newVal}})
		case !reflect.DeepEqual(oldVal, newVal):
			ops = append(ops, Operation{Action: ActionChange, URN: urn, Data: map[string]any{k: newVal}})
		}
	}
	return ops
}

// compareLists emits set-style item removes and adds; item order within the
// lists does not matter.
func compareLists(urn string, old, want []map[string]any) []Operation {
	var ops []Operation
	for _, item := range old {
		if !containsItem(want, item) {
			ops = append(ops, Operation{Action: ActionRemove, URN: urn, Data: item})
		}
	}
	for _, item := range want {
		if !containsItem(old, item) {
			ops = append(ops, Operation{Action: ActionAdd, URN: urn, Data: item})
		}
	}
	return ops
}

func containsItem(items []map[string]any, target map[string]any) bool {
	for _, item := range items {
		if reflect.DeepEqual(item, target) {
			return true
		}
	}
	return false
}
