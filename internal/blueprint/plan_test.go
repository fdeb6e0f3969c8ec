package blueprint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frostform/internal/resource"
)

type memoryState struct {
	manifest *Manifest
}

func (m *memoryState) ExportState(_ context.Context) (*Manifest, error) {
	if m.manifest == nil {
		return NewManifest(), nil
	}
	return m.manifest, nil
}

type scriptExec struct {
	statements []string
	failOn     string
}

func (s *scriptExec) Execute(_ context.Context, statement string) error {
	if s.failOn != "" && strings.Contains(statement, s.failOn) {
		return fmt.Errorf("boom")
	}
	s.statements = append(s.statements, statement)
	return nil
}

func TestPlanAgainstEmptyStateOrdersByDependency(t *testing.T) {
	bp, _, _, _ := stagedHierarchy(t)

	plan, err := bp.Plan(context.Background(), &memoryState{})
	require.NoError(t, err)
	require.Len(t, plan.Operations, 3)

	assert.Equal(t, "urn::ABCD123:database/DB", plan.Operations[0].URN)
	assert.Equal(t, "urn::ABCD123:schema/DB.SCH", plan.Operations[1].URN)
	assert.Equal(t, "urn::ABCD123:table/DB.SCH.ORDERS", plan.Operations[2].URN)
	for _, op := range plan.Operations {
		assert.Equal(t, ActionAdd, op.Action)
	}
}

func TestPlanIsIdempotent(t *testing.T) {
	bp, _, _, _ := stagedHierarchy(t)
	desired, err := bp.GenerateManifest()
	require.NoError(t, err)

	plan, err := bp.Plan(context.Background(), &memoryState{manifest: desired})
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestPlanConvergesAfterStateRoundTrip(t *testing.T) {
	db := resource.NewDatabase(resource.DatabaseSpec{Name: "DB", Tags: map[string]string{"env": "prod"}})
	sch := resource.NewSchema(resource.SchemaSpec{Name: "SCH", Database: "DB"})
	sch.Requires(db)
	tbl, err := resource.NewTable(resource.TableSpec{
		Name:      "ORDERS",
		Database:  "DB",
		Schema:    "SCH",
		Columns:   []resource.Column{{Name: "id", DataType: "NUMBER"}},
		ClusterBy: []string{"id"},
	})
	require.NoError(t, err)
	tbl.Requires(sch)

	bp := New("test", testContext())
	require.NoError(t, bp.Add(tbl))

	desired, err := bp.GenerateManifest()
	require.NoError(t, err)

	// State written after an apply comes back through JSON with generic
	// value shapes. Re-planning against it must still converge to empty.
	data, err := json.Marshal(desired)
	require.NoError(t, err)
	loaded := NewManifest()
	require.NoError(t, json.Unmarshal(data, loaded))

	plan, err := bp.Plan(context.Background(), &memoryState{manifest: loaded})
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty(), "unexpected operations: %+v", plan.Operations)
}

func TestPlanRemovesUnmanagedState(t *testing.T) {
	bp := New("test", testContext())
	require.NoError(t, bp.Add(resource.NewRole(resource.RoleSpec{Name: "KEEP"})))

	remote := NewManifest()
	keep := resource.NewRole(resource.RoleSpec{Name: "KEEP"})
	remote.Set("urn::ABCD123:role/KEEP", keep.Attributes())
	remote.Set("urn::ABCD123:role/GONE", map[string]any{"name": "GONE", "owner": "USERADMIN"})

	plan, err := bp.Plan(context.Background(), &memoryState{manifest: remote})
	require.NoError(t, err)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, ActionRemove, plan.Operations[0].Action)
	assert.Equal(t, "urn::ABCD123:role/GONE", plan.Operations[0].URN)
	assert.Equal(t, "GONE", plan.Operations[0].Data["name"])
}

func TestPlanDropsNonFetchableChanges(t *testing.T) {
	bp := New("test", testContext())
	secret, err := resource.NewSecret(resource.SecretSpec{
		Name:     "DB_CREDS",
		Username: "u",
		Password: "new",
		Database: "DB",
		Schema:   "SCH",
	})
	require.NoError(t, err)
	require.NoError(t, bp.Add(secret))

	remote := NewManifest()
	remote.Set("urn::ABCD123:secret/DB.SCH.DB_CREDS", map[string]any{
		"name":        "DB_CREDS",
		"secret_type": "PASSWORD",
		"username":    "u",
		"password":    "old",
		"owner":       "SYSADMIN",
	})

	plan, err := bp.Plan(context.Background(), &memoryState{manifest: remote})
	require.NoError(t, err)
	// The password differs but is not fetchable, so nothing remains to change.
	assert.True(t, plan.IsEmpty())
}

func TestPlanCyclicDependency(t *testing.T) {
	a := resource.NewRole(resource.RoleSpec{Name: "A"})
	b := resource.NewRole(resource.RoleSpec{Name: "B"})
	a.Requires(b)
	b.Requires(a)

	bp := New("test", testContext())
	require.NoError(t, bp.Add(a))

	_, err := bp.Plan(context.Background(), &memoryState{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicDependency)
}

func TestApplyExecutesInOrder(t *testing.T) {
	bp, _, _, _ := stagedHierarchy(t)
	plan, err := bp.Plan(context.Background(), &memoryState{})
	require.NoError(t, err)

	exec := &scriptExec{}
	require.NoError(t, Apply(context.Background(), exec, plan))

	require.Len(t, exec.statements, 3)
	assert.True(t, strings.HasPrefix(exec.statements[0], "CREATE DATABASE DB"))
	assert.True(t, strings.HasPrefix(exec.statements[1], "CREATE SCHEMA DB.SCH"))
	assert.True(t, strings.HasPrefix(exec.statements[2], "CREATE TABLE DB.SCH.ORDERS"))
}

func TestApplyStopsOnFirstFailure(t *testing.T) {
	bp, _, _, _ := stagedHierarchy(t)
	plan, err := bp.Plan(context.Background(), &memoryState{})
	require.NoError(t, err)

	exec := &scriptExec{failOn: "CREATE SCHEMA"}
	err = Apply(context.Background(), exec, plan)
	require.Error(t, err)
	// Only the database creation ran.
	assert.Len(t, exec.statements, 1)
}

func TestApplyRejectsUnknownAction(t *testing.T) {
	plan := &Plan{Operations: []Operation{
		{Action: Action("noop"), URN: "urn::ABCD123:role/X", Data: map[string]any{"name": "X"}},
	}}
	err := Apply(context.Background(), &scriptExec{}, plan)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedAction)
}

func TestDestroyReverseDependencyOrder(t *testing.T) {
	bp, _, _, _ := stagedHierarchy(t)
	manifest, err := bp.GenerateManifest()
	require.NoError(t, err)

	exec := &scriptExec{}
	require.NoError(t, Destroy(context.Background(), exec, manifest))

	require.Len(t, exec.statements, 3)
	assert.Equal(t, "DROP TABLE DB.SCH.ORDERS", exec.statements[0])
	assert.Equal(t, "DROP SCHEMA DB.SCH", exec.statements[1])
	assert.Equal(t, "DROP DATABASE DB", exec.statements[2])
}

func TestDestroyRevokesListEntries(t *testing.T) {
	manifest := NewManifest()
	manifest.Append("urn::ABCD123:grant/REPORTER", map[string]any{
		"priv": "USAGE", "on_type": "DATABASE", "on": "DB", "to": "REPORTER",
	})
	manifest.Append("urn::ABCD123:grant/REPORTER", map[string]any{
		"priv": "SELECT", "on_type": "TABLE", "on": "DB.SCH.T", "to": "REPORTER",
	})

	exec := &scriptExec{}
	require.NoError(t, Destroy(context.Background(), exec, manifest))
	require.Len(t, exec.statements, 2)
	for _, stmt := range exec.statements {
		assert.True(t, strings.HasPrefix(stmt, "REVOKE "))
	}
}

func TestPlanSummary(t *testing.T) {
	plan := &Plan{Operations: []Operation{
		{Action: ActionAdd}, {Action: ActionAdd}, {Action: ActionChange}, {Action: ActionRemove},
	}}
	adds, changes, removes := plan.Summary()
	assert.Equal(t, 2, adds)
	assert.Equal(t, 1, changes)
	assert.Equal(t, 1, removes)
}
