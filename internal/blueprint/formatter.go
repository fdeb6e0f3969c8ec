package blueprint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// FormatText writes a human-readable plan to w.
// If noColor is true, ANSI codes are suppressed.
func FormatText(w io.Writer, plan *Plan, noColor bool) {
	c := func(code string) string {
		if noColor {
			return ""
		}
		return code
	}

	if plan.IsEmpty() {
		fmt.Fprintln(w, "No changes. Remote state matches the blueprint.")
		return
	}

	// Group operations by identifier for section headers. Plan order is
	// dependency order, so groups print in execution order.
	type group struct {
		urn string
		ops []Operation
	}
	var groups []group
	seen := map[string]int{}
	for _, op := range plan.Operations {
		if idx, ok := seen[op.URN]; ok {
			groups[idx].ops = append(groups[idx].ops, op)
		} else {
			seen[op.URN] = len(groups)
			groups = append(groups, group{urn: op.URN, ops: []Operation{op}})
		}
	}

	for _, g := range groups {
		fmt.Fprintf(w, "\n%s# %s%s\n", c(colorCyan), g.urn, c(colorReset))
		for _, op := range g.ops {
			switch op.Action {
			case ActionAdd:
				fmt.Fprintf(w, "  %s+%s will be created\n", c(colorGreen), c(colorReset))
				formatData(w, op.Data, c)
			case ActionChange:
				fmt.Fprintf(w, "  %s~%s will be updated\n", c(colorYellow), c(colorReset))
				formatData(w, op.Data, c)
			case ActionRemove:
				fmt.Fprintf(w, "  %s-%s will be removed\n", c(colorRed), c(colorReset))
			}
		}
	}

	adds, changes, removes := plan.Summary()
	fmt.Fprintf(w, "\n%sPlan:%s %d to add, %d to change, %d to remove.\n",
		c(colorDim), c(colorReset), adds, changes, removes)
}

// formatData writes indented key-value pairs in sorted key order. A nil
// value marks a field being unset.
func formatData(w io.Writer, data map[string]any, c func(string) string) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := data[k]
		if v == nil {
			fmt.Fprintf(w, "      %s%s%s: (unset)\n", c(colorDim), k, c(colorReset))
			continue
		}
		fmt.Fprintf(w, "      %s%s%s: %v\n", c(colorDim), k, c(colorReset), v)
	}
}

// FormatJSON writes the plan as JSON to w.
func FormatJSON(w io.Writer, plan *Plan) error {
	type jsonPlan struct {
		Operations []Operation `json:"operations"`
		Add        int         `json:"add"`
		Change     int         `json:"change"`
		Remove     int         `json:"remove"`
	}

	jp := jsonPlan{Operations: plan.Operations}
	if jp.Operations == nil {
		jp.Operations = []Operation{}
	}
	jp.Add, jp.Change, jp.Remove = plan.Summary()

	data, err := json.MarshalIndent(jp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
