// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/media-batch/pkg/types"
)

// Manifest is the exported form of one run.
type Manifest struct {
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Ledger     string          `json:"ledger" yaml:"ledger"`
	Run        types.RunRecord `json:"run" yaml:"run"`
}

// Export formats accepted by ExportFile.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ExportYAML writes the manifest of runID to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, runID, path string) error {
	m, err := s.manifest(ctx, runID)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeManifest(path, data)
}

// ExportJSON writes the manifest of runID to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, runID, path string) error {
	m, err := s.manifest(ctx, runID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeManifest(path, append(data, '\n'))
}

// ExportFile dispatches to ExportYAML or ExportJSON by format.
func (s *Store) ExportFile(ctx context.Context, runID, format, path string) error {
	switch format {
	case FormatYAML:
		return s.ExportYAML(ctx, runID, path)
	case FormatJSON:
		return s.ExportJSON(ctx, runID, path)
	default:
		return fmt.Errorf("unsupported export format %q (want yaml or json)", format)
	}
}

func (s *Store) manifest(ctx context.Context, runID string) (Manifest, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return Manifest{}, fmt.Errorf("loading run for export: %w", err)
	}
	return Manifest{
		ExportedAt: time.Now().UTC(),
		Ledger:     s.path,
		Run:        run,
	}, nil
}

func writeManifest(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}
