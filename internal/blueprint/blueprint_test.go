package blueprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frostform/internal/resource"
)

func testContext() Context {
	return Context{Account: "ABCD123"}
}

func stagedHierarchy(t *testing.T) (*Blueprint, *resource.Resource, *resource.Resource, *resource.Resource) {
	t.Helper()
	db := resource.NewDatabase(resource.DatabaseSpec{Name: "DB"})
	sch := resource.NewSchema(resource.SchemaSpec{Name: "SCH", Database: "DB"})
	sch.Requires(db)
	tbl, err := resource.NewTable(resource.TableSpec{
		Name:     "ORDERS",
		Database: "DB",
		Schema:   "SCH",
		Columns:  []resource.Column{{Name: "id", DataType: "NUMBER"}},
	})
	require.NoError(t, err)
	tbl.Requires(sch)

	bp := New("test", testContext())
	require.NoError(t, bp.Add(tbl))
	return bp, db, sch, tbl
}

func TestGenerateManifestHierarchy(t *testing.T) {
	bp, _, _, _ := stagedHierarchy(t)

	manifest, err := bp.GenerateManifest()
	require.NoError(t, err)

	// The implicit PUBLIC schema contributes no entry of its own.
	assert.Equal(t, 3, manifest.Len())
	_, ok := manifest.Entry("urn::ABCD123:database/DB")
	assert.True(t, ok)
	_, ok = manifest.Entry("urn::ABCD123:schema/DB.SCH")
	assert.True(t, ok)
	_, ok = manifest.Entry("urn::ABCD123:table/DB.SCH.ORDERS")
	assert.True(t, ok)
	_, ok = manifest.Entry("urn::ABCD123:schema/DB.PUBLIC")
	assert.False(t, ok)

	// It still appears as a dependency endpoint.
	assert.Contains(t, manifest.Refs(), [2]string{"urn::ABCD123:database/DB", "urn::ABCD123:schema/DB.PUBLIC"})
	assert.Contains(t, manifest.Refs(), [2]string{"urn::ABCD123:schema/DB.SCH", "urn::ABCD123:database/DB"})
	assert.Contains(t, manifest.Refs(), [2]string{"urn::ABCD123:table/DB.SCH.ORDERS", "urn::ABCD123:schema/DB.SCH"})
}

func TestAddIsIdempotent(t *testing.T) {
	bp, db, sch, tbl := stagedHierarchy(t)
	require.NoError(t, bp.Add(tbl, sch, db))

	manifest, err := bp.GenerateManifest()
	require.NoError(t, err)
	assert.Equal(t, 3, manifest.Len())
}

func TestAddSecondAccountConflicts(t *testing.T) {
	bp := New("test", testContext())
	require.NoError(t, bp.Add(resource.NewAccount(resource.AccountSpec{Name: "PROD"})))

	err := bp.Add(resource.NewAccount(resource.AccountSpec{Name: "DEV"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScopeConflict)
}

func TestGenerateManifestOrphanedResource(t *testing.T) {
	sch := resource.NewSchema(resource.SchemaSpec{Name: "SCH"})
	bp := New("test", testContext())
	require.NoError(t, bp.Add(sch))

	_, err := bp.GenerateManifest()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrphanedResource)
}

func TestGenerateManifestFillsDefaultScope(t *testing.T) {
	tbl, err := resource.NewTable(resource.TableSpec{
		Name:    "ORDERS",
		Columns: []resource.Column{{Name: "id", DataType: "NUMBER"}},
	})
	require.NoError(t, err)

	bp := New("test", Context{Account: "ABCD123", Database: "DB", Schema: "SCH"})
	require.NoError(t, bp.Add(tbl))

	manifest, err := bp.GenerateManifest()
	require.NoError(t, err)
	_, ok := manifest.Entry("urn::ABCD123:table/DB.SCH.ORDERS")
	assert.True(t, ok)
}

func TestGenerateManifestListKindsConverge(t *testing.T) {
	a, err := resource.NewGrant(resource.GrantSpec{Priv: "USAGE", OnType: "DATABASE", On: "DB", To: "REPORTER"})
	require.NoError(t, err)
	b, err := resource.NewGrant(resource.GrantSpec{Priv: "SELECT", OnType: "TABLE", On: "DB.SCH.T", To: "REPORTER"})
	require.NoError(t, err)

	bp := New("test", testContext())
	require.NoError(t, bp.Add(a, b))

	manifest, err := bp.GenerateManifest()
	require.NoError(t, err)
	require.Equal(t, 1, manifest.Len())

	entry, ok := manifest.Entry("urn::ABCD123:grant/REPORTER")
	require.True(t, ok)
	assert.True(t, entry.IsList())
	assert.Len(t, entry.Items, 2)
}

func TestGenerateManifestAlertCarriesWarehouseRef(t *testing.T) {
	wh := resource.NewWarehouse(resource.WarehouseSpec{Name: "LOADER"})
	alert, err := resource.NewAlert(resource.AlertSpec{
		Name:      "ROWS_STUCK",
		Warehouse: wh,
		Schedule:  "10 MINUTE",
		Condition: "SELECT 1",
		Then:      "CALL notify()",
		Database:  "DB",
		Schema:    "SCH",
	})
	require.NoError(t, err)

	bp := New("test", testContext())
	require.NoError(t, bp.Add(alert))

	manifest, err := bp.GenerateManifest()
	require.NoError(t, err)
	// The warehouse was staged transitively.
	assert.Equal(t, 2, manifest.Len())
	assert.Contains(t, manifest.Refs(), [2]string{"urn::ABCD123:alert/DB.SCH.ROWS_STUCK", "urn::ABCD123:warehouse/LOADER"})
}
