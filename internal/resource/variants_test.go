package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecretType(t *testing.T) {
	got, err := ParseSecretType(" password ")
	require.NoError(t, err)
	assert.Equal(t, SecretTypePassword, got)

	got, err = ParseSecretType("GENERIC_STRING")
	require.NoError(t, err)
	assert.Equal(t, SecretTypeGenericString, got)

	_, err = ParseSecretType("oauth2")
	assert.ErrorIs(t, err, ErrUnknownSecretType)
}

func TestResolveSecretVariant(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		want    SecretType
		wantErr bool
	}{
		{"discriminant wins", map[string]any{"secret_type": "password", "secret_string": "x"}, SecretTypePassword, false},
		{"password fields", map[string]any{"username": "u", "password": "p"}, SecretTypePassword, false},
		{"username alone", map[string]any{"username": "u"}, SecretTypePassword, false},
		{"generic string", map[string]any{"secret_string": "x"}, SecretTypeGenericString, false},
		{"ambiguous", map[string]any{"password": "p", "secret_string": "x"}, "", true},
		{"no fields", map[string]any{"comment": "hi"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSecretVariant(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSecretType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSecretVariants(t *testing.T) {
	s, err := NewSecret(SecretSpec{Name: "db_creds", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, string(SecretTypePassword), s.Attributes()["secret_type"])

	s, err = NewSecret(SecretSpec{Name: "api_key", SecretString: "xyz"})
	require.NoError(t, err)
	assert.Equal(t, string(SecretTypeGenericString), s.Attributes()["secret_type"])

	_, err = NewSecret(SecretSpec{Name: "nothing"})
	assert.Error(t, err)
}

func TestParseStreamType(t *testing.T) {
	got, err := ParseStreamType("view")
	require.NoError(t, err)
	assert.Equal(t, StreamTypeView, got)

	_, err = ParseStreamType("pipe")
	assert.ErrorIs(t, err, ErrUnknownStreamType)
}

func TestResolveStreamVariant(t *testing.T) {
	assert.Equal(t, StreamTypeTable, ResolveStreamVariant(map[string]any{"on_table": "DB.SCH.T"}))
	assert.Equal(t, StreamTypeView, ResolveStreamVariant(map[string]any{"on_view": "DB.SCH.V"}))
	assert.Equal(t, StreamTypeStage, ResolveStreamVariant(map[string]any{"on_stage": "DB.SCH.S"}))
	// Partial payloads without a source field fall back to the table variant.
	assert.Equal(t, StreamTypeTable, ResolveStreamVariant(map[string]any{"comment": "hi"}))
}

func TestNewStreamExactlyOneSource(t *testing.T) {
	table, err := NewTable(TableSpec{
		Name:     "orders",
		Database: "DB",
		Schema:   "SCH",
		Columns:  []Column{{Name: "id", DataType: "NUMBER"}},
	})
	require.NoError(t, err)
	view, err := NewView(ViewSpec{Name: "recent", Database: "DB", Schema: "SCH", AsSelect: "SELECT 1"})
	require.NoError(t, err)

	_, err = NewStream(StreamSpec{Name: "orders_cdc"})
	assert.Error(t, err)

	_, err = NewStream(StreamSpec{Name: "orders_cdc", OnTable: table, OnView: view})
	assert.Error(t, err)

	s, err := NewStream(StreamSpec{Name: "orders_cdc", OnTable: table})
	require.NoError(t, err)
	assert.Equal(t, "DB.SCH.ORDERS", s.Attributes()["on_table"])
	require.Len(t, s.Refs(), 1)
	assert.Same(t, table, s.Refs()[0])
}
