package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProject = `
apiVersion: frostform/v1
kind: Project
name: analytics
account: ABCD123

warehouses:
  - name: loader
    warehouse_size: SMALL
    auto_suspend: 300

databases:
  - name: analytics
    comment: main analytics database
    schemas:
      - name: raw
        tables:
          - name: orders
            columns:
              - name: id
                data_type: NUMBER
              - name: amount
                data_type: FLOAT
        views:
          - name: recent_orders
            as_select: SELECT * FROM orders

roles:
  - name: reporter

users:
  - name: alice
    default_role: reporter

grants:
  - priv: USAGE
    on_type: DATABASE
    on: ANALYTICS
    to: REPORTER
  - priv: SELECT
    on_type: TABLE
    on: ANALYTICS.RAW.ORDERS
    to: REPORTER

role_grants:
  - role: reporter
    to_user: alice

alerts:
  - name: rows_stuck
    warehouse: loader
    schedule: USING CRON 0 9 * * MON UTC
    condition: SELECT 1
    then: CALL notify()
    database: analytics
    schema: raw
`

func TestParseValidProject(t *testing.T) {
	project, err := Parse("frostform.yaml", []byte(sampleProject))
	require.NoError(t, err)
	assert.Equal(t, "analytics", project.Name)
	assert.Equal(t, "ABCD123", project.Account)
	require.Len(t, project.Databases, 1)
	require.Len(t, project.Databases[0].Schemas, 1)
	assert.Len(t, project.Databases[0].Schemas[0].Tables, 1)
}

func TestParseRejectsHeaderMismatch(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"wrong apiVersion", "apiVersion: frostform/v2\nkind: Project\nname: x\n"},
		{"wrong kind", "apiVersion: frostform/v1\nkind: Blueprint\nname: x\n"},
		{"missing name", "apiVersion: frostform/v1\nkind: Project\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("frostform.yaml", []byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := "apiVersion: frostform/v1\nkind: Project\nname: x\npipelines: []\n"
	_, err := Parse("frostform.yaml", []byte(doc))
	assert.Error(t, err)
}

func TestBuildStagesDeclaredResources(t *testing.T) {
	project, err := Parse("frostform.yaml", []byte(sampleProject))
	require.NoError(t, err)

	bp, err := project.Build()
	require.NoError(t, err)

	manifest, err := bp.GenerateManifest()
	require.NoError(t, err)

	wantEntries := []string{
		"urn::ABCD123:warehouse/LOADER",
		"urn::ABCD123:database/ANALYTICS",
		"urn::ABCD123:schema/ANALYTICS.RAW",
		"urn::ABCD123:table/ANALYTICS.RAW.ORDERS",
		"urn::ABCD123:view/ANALYTICS.RAW.RECENT_ORDERS",
		"urn::ABCD123:role/REPORTER",
		"urn::ABCD123:user/ALICE",
		"urn::ABCD123:grant/REPORTER",
		"urn::ABCD123:role_grant/REPORTER",
		"urn::ABCD123:alert/ANALYTICS.RAW.ROWS_STUCK",
	}
	for _, urn := range wantEntries {
		_, ok := manifest.Entry(urn)
		assert.True(t, ok, "missing entry %s", urn)
	}
	assert.Equal(t, len(wantEntries), manifest.Len())

	// Both grants converge under the grantee's identifier.
	grants, _ := manifest.Entry("urn::ABCD123:grant/REPORTER")
	assert.Len(t, grants.Items, 2)

	// The alert depends on its warehouse.
	assert.Contains(t, manifest.Refs(), [2]string{
		"urn::ABCD123:alert/ANALYTICS.RAW.ROWS_STUCK",
		"urn::ABCD123:warehouse/LOADER",
	})
}

func TestBuildRejectsUndeclaredWarehouse(t *testing.T) {
	doc := `
apiVersion: frostform/v1
kind: Project
name: x
alerts:
  - name: a
    warehouse: missing
    condition: SELECT 1
    then: CALL notify()
`
	project, err := Parse("frostform.yaml", []byte(doc))
	require.NoError(t, err)
	_, err = project.Build()
	assert.Error(t, err)
}
