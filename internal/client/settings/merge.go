package settings

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/common"
)

type assignFunc func(s *models.Settings, raw json.RawMessage) error

// assign decodes raw into a fresh T and stores it in dst, so objects
// replace the previous value instead of merging into it.
func assign[T any](dst *T, raw json.RawMessage) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// fields maps every top-level JSON field name to its setter.
var fields = map[string]assignFunc{
	"sidebarOpen":     func(s *models.Settings, raw json.RawMessage) error { return assign(&s.SidebarOpen, raw) },
	"pageSize":        func(s *models.Settings, raw json.RawMessage) error { return assign(&s.PageSize, raw) },
	"filters":         func(s *models.Settings, raw json.RawMessage) error { return assign(&s.Filters, raw) },
	"searchTerms":     func(s *models.Settings, raw json.RawMessage) error { return assign(&s.SearchTerms, raw) },
	"tableColumns":    func(s *models.Settings, raw json.RawMessage) error { return assign(&s.TableColumns, raw) },
	"sortPreferences": func(s *models.Settings, raw json.RawMessage) error { return assign(&s.SortPreferences, raw) },
	"notifications":   func(s *models.Settings, raw json.RawMessage) error { return assign(&s.Notifications, raw) },
	"autoRefresh":     func(s *models.Settings, raw json.RawMessage) error { return assign(&s.AutoRefresh, raw) },
}

// Fields returns the top-level field names accepted by Update.
func Fields() []string {
	out := make([]string, 0, len(fields))
	for k := range fields {
		out = append(out, k)
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}

// Merge overlays the top-level fields present in blob on defaults. Nested
// objects in blob replace the default value as a whole. Unknown fields and
// null values are ignored.
//
// A blob that is not a JSON object yields defaults and an error. A field
// whose value has the wrong type keeps its default and is reported in
// skipped.
func Merge(defaults models.Settings, blob []byte) (merged models.Settings, skipped []string, err error) {
	merged = defaults.Clone()

	var stored map[string]json.RawMessage
	if err := json.Unmarshal(blob, &stored); err != nil {
		return merged, nil, fmt.Errorf("parse settings: %w", err)
	}
	if stored == nil {
		return merged, nil, fmt.Errorf("parse settings: %w", common.ErrInvalidValue)
	}

	for name, raw := range stored {
		set, ok := fields[name]
		if !ok || isNull(raw) {
			continue
		}
		if err := set(&merged, raw); err != nil {
			skipped = append(skipped, name)
		}
	}

	merged.Normalize()
	return merged, skipped, nil
}

// setField replaces one top-level field with value.
func setField(s *models.Settings, field string, value any) error {
	set, ok := fields[field]
	if !ok {
		return fmt.Errorf("%w: %q", common.ErrUnknownField, field)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidValue, err)
	}
	if isNull(raw) {
		return fmt.Errorf("%w: %s cannot be null", common.ErrInvalidValue, field)
	}
	if err := set(s, raw); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidValue, field, err)
	}

	s.Normalize()
	return nil
}

// setNested merges nestedKey: value into the object-valued field. changed
// is false when the field is not an object.
func setNested(s *models.Settings, field, nestedKey string, value any) (changed bool, err error) {
	set, ok := fields[field]
	if !ok {
		return false, fmt.Errorf("%w: %q", common.ErrUnknownField, field)
	}

	var top map[string]json.RawMessage
	b, err := json.Marshal(s)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, &top); err != nil {
		return false, err
	}

	current := top[field]
	if !isObject(current) {
		return false, nil
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(current, &nested); err != nil {
		return false, err
	}

	v, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrInvalidValue, err)
	}
	nested[nestedKey] = v

	raw, err := json.Marshal(nested)
	if err != nil {
		return false, err
	}
	if err := set(s, raw); err != nil {
		return false, fmt.Errorf("%w: %s.%s: %v", common.ErrInvalidValue, field, nestedKey, err)
	}

	s.Normalize()
	return true, nil
}

// normalizeValue round-trips v through JSON so the in-memory value has the
// same dynamic type it will have after a reload.
func normalizeValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidValue, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidValue, err)
	}
	return out, nil
}
