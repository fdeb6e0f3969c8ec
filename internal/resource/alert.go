package resource

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"frostform/internal/ident"
)

// cronParser accepts the five-field schedule form used in USING CRON
// clauses (minute hour day-of-month month day-of-week).
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// validateSchedule accepts either an interval schedule ("10 MINUTE") or a
// "USING CRON <expr> <tz>" schedule, validating the cron expression.
func validateSchedule(schedule string) error {
	upper := strings.ToUpper(strings.TrimSpace(schedule))
	if !strings.HasPrefix(upper, "USING CRON ") {
		return nil
	}
	rest := strings.Fields(strings.TrimSpace(schedule[len("USING CRON "):]))
	if len(rest) < 5 {
		return fmt.Errorf("cron schedule needs 5 fields: %q", schedule)
	}
	expr := strings.Join(rest[:5], " ")
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// AlertSpec declares an alert that runs a condition query on a warehouse and
// triggers an action when it returns rows.
type AlertSpec struct {
	Name      string
	Warehouse *Resource
	Schedule  string
	Condition string
	Then      string
	Comment   string
	Owner     string
	Database  string
	Schema    string
}

// NewAlert builds an alert resource. The warehouse is recorded as an
// explicit dependency edge.
func NewAlert(spec AlertSpec) (*Resource, error) {
	if spec.Warehouse == nil {
		return nil, fmt.Errorf("alert %s: warehouse is required", spec.Name)
	}
	if spec.Condition == "" || spec.Then == "" {
		return nil, fmt.Errorf("alert %s: condition and then are required", spec.Name)
	}
	if err := validateSchedule(spec.Schedule); err != nil {
		return nil, fmt.Errorf("alert %s: %w", spec.Name, err)
	}
	attrs := map[string]any{
		"name":      spec.Name,
		"warehouse": spec.Warehouse.Name().String(),
		"schedule":  spec.Schedule,
		"condition": spec.Condition,
		"then":      spec.Then,
		"owner":     stringOr(spec.Owner, defaultOwner),
	}
	setAttr(attrs, "comment", spec.Comment)
	a := newResource(KindAlert, spec.Name, attrs)
	a.database = ident.NewResourceName(spec.Database)
	a.schema = ident.NewResourceName(spec.Schema)
	a.Requires(spec.Warehouse)
	return a, nil
}

// TaskSpec declares a scheduled task. Warehouse is optional; serverless
// tasks omit it.
type TaskSpec struct {
	Name      string
	Warehouse *Resource
	Schedule  string
	AsSQL     string
	Comment   string
	Owner     string
	Database  string
	Schema    string
}

// NewTask builds a task resource.
func NewTask(spec TaskSpec) (*Resource, error) {
	if spec.AsSQL == "" {
		return nil, fmt.Errorf("task %s: task body is required", spec.Name)
	}
	if err := validateSchedule(spec.Schedule); err != nil {
		return nil, fmt.Errorf("task %s: %w", spec.Name, err)
	}
	attrs := map[string]any{
		"name":  spec.Name,
		"as_":   spec.AsSQL,
		"owner": stringOr(spec.Owner, defaultOwner),
	}
	setAttr(attrs, "schedule", spec.Schedule)
	setAttr(attrs, "comment", spec.Comment)
	t := newResource(KindTask, spec.Name, attrs)
	t.database = ident.NewResourceName(spec.Database)
	t.schema = ident.NewResourceName(spec.Schema)
	if spec.Warehouse != nil {
		attrs["warehouse"] = spec.Warehouse.Name().String()
		t.Requires(spec.Warehouse)
	}
	return t, nil
}
