package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frostform/internal/blueprint"
)

func TestMemoryZeroValueIsEmptyState(t *testing.T) {
	m, err := NewMemory(nil).ExportState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestFileMissingSnapshotIsEmptyState(t *testing.T) {
	p := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	m, err := p.ExportState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestFileWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	p := NewFile(path)

	manifest := blueprint.NewManifest()
	manifest.Set("urn::A:database/DB", map[string]any{"name": "DB", "data_retention_time_in_days": 1})
	manifest.AddRef("urn::A:schema/DB.SCH", "urn::A:database/DB")
	require.NoError(t, p.WriteState(manifest))

	loaded, err := p.ExportState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, manifest.URNs(), loaded.URNs())
	assert.Equal(t, manifest.Refs(), loaded.Refs())

	entry, ok := loaded.Entry("urn::A:database/DB")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Data["data_retention_time_in_days"])
}

func TestFileRejectsMalformedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFile(path).ExportState(context.Background())
	assert.Error(t, err)
}
