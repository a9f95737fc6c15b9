package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format by file extension; anything that is not
// .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Export writes the current record to w.
func (s *Store) Export(w io.Writer, format Format) error {
	current := s.Get()

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(current); err != nil {
			return fmt.Errorf("encode settings yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(current); err != nil {
			return fmt.Errorf("encode settings json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown settings format %q", format)
}

// Import replaces the current record with the one read from r, merged over
// the defaults exactly as on Load, and persists it. Unlike Load, a document
// that does not parse is an error and leaves the store unchanged.
func (s *Store) Import(ctx context.Context, r io.Reader, format Format) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	blob := data
	if format == FormatYAML {
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse settings yaml: %w", err)
		}
		if blob, err = json.Marshal(doc); err != nil {
			return fmt.Errorf("convert settings yaml: %w", err)
		}
	}

	merged, skipped, err := Merge(models.DefaultSettings(), blob)
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		s.log.Warn(ctx, "imported settings with unexpected types ignored", "fields", skipped)
	}

	s.cancelPending()
	return s.mutate(ctx, func(next *models.Settings) error {
		*next = merged
		return nil
	})
}
