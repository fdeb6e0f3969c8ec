package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Kind
		wantErr bool
	}{
		{"exact", "table", KindTable, false},
		{"upper", "TABLE", KindTable, false},
		{"padded", "  schema ", KindSchema, false},
		{"spaces to underscores", "role grant", KindRoleGrant, false},
		{"underscored", "role_grant", KindRoleGrant, false},
		{"unknown", "pipeline", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScopeOf(t *testing.T) {
	assert.Equal(t, ScopeOrganization, ScopeOf(KindAccount))
	assert.Equal(t, ScopeAccount, ScopeOf(KindDatabase))
	assert.Equal(t, ScopeDatabase, ScopeOf(KindSchema))
	assert.Equal(t, ScopeSchema, ScopeOf(KindTable))
	assert.Equal(t, ScopeSchema, ScopeOf(KindStream))
}

func TestSerializesAsList(t *testing.T) {
	assert.True(t, SerializesAsList(KindGrant))
	assert.True(t, SerializesAsList(KindRoleGrant))
	assert.False(t, SerializesAsList(KindTable))
	assert.False(t, SerializesAsList(KindRole))
}
