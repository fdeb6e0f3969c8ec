// Package provider supplies remote-state manifests for planning. The memory
// provider serves fixtures and programmatic state; the file provider loads a
// JSON state snapshot exported by a previous run.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"frostform/internal/blueprint"
)

// Memory serves a fixed manifest. The zero value serves empty state, which is
// what planning against a fresh account looks like.
type Memory struct {
	manifest *blueprint.Manifest
}

// NewMemory returns a provider serving the given manifest. A nil manifest
// means empty state.
func NewMemory(m *blueprint.Manifest) *Memory {
	return &Memory{manifest: m}
}

// ExportState returns the held manifest.
func (p *Memory) ExportState(_ context.Context) (*blueprint.Manifest, error) {
	if p.manifest == nil {
		return blueprint.NewManifest(), nil
	}
	return p.manifest, nil
}

// File loads remote state from a JSON snapshot on disk.
type File struct {
	path string
}

// NewFile returns a provider reading the snapshot at path. A missing file is
// treated as empty state so first runs need no bootstrap step.
func NewFile(path string) *File {
	return &File{path: path}
}

// ExportState reads and decodes the snapshot.
func (p *File) ExportState(_ context.Context) (*blueprint.Manifest, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return blueprint.NewManifest(), nil
		}
		return nil, fmt.Errorf("read state %s: %w", p.path, err)
	}
	manifest := blueprint.NewManifest()
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", p.path, err)
	}
	return manifest, nil
}

// WriteState persists a manifest as the snapshot for the next run.
func (p *File) WriteState(manifest *blueprint.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write state %s: %w", p.path, err)
	}
	return nil
}
