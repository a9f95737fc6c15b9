// Package settings is the persistent store of per-user UI preferences:
// page size, per-page filters, search terms, sort order, visible columns,
// notification switches and auto-refresh intervals.
//
// The record lives under the app_settings storage key as one JSON object.
// A Store starts from defaults, is hydrated once by Load, and rewrites the
// whole record after every mutation. Until Load has run, mutations change
// only the in-memory record so that defaults never overwrite stored state
// that has not been read yet.
//
// Storage failures are logged and otherwise ignored: the store keeps
// working in memory. Instances do not observe each other; two stores over
// the same storage are last-write-wins.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/dmitrijs2005/societyhub/internal/logging"
)

type Store struct {
	repo kv.Repository
	log  logging.Logger

	mu       sync.Mutex
	current  models.Settings
	hydrated bool

	dmu     sync.Mutex
	pending map[string]*pendingTerm
	closed  bool
}

// New returns a store holding defaults. Call Load to hydrate it.
func New(repo kv.Repository, log logging.Logger) *Store {
	return &Store{
		repo:    repo,
		log:     log.With("component", "settings"),
		current: models.DefaultSettings(),
		pending: make(map[string]*pendingTerm),
	}
}

// Open is New followed by Load.
func Open(ctx context.Context, repo kv.Repository, log logging.Logger) *Store {
	s := New(repo, log)
	s.Load(ctx)
	return s
}

// Load reads the stored record and merges it over the defaults. Only the
// first call has an effect.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return
	}
	defer func() { s.hydrated = true }()

	blob, err := s.repo.Get(ctx, common.KeyAppSettings)
	if err != nil {
		s.log.Error(ctx, "error loading settings", "err", err)
		return
	}
	if blob == nil {
		return
	}

	merged, skipped, err := Merge(models.DefaultSettings(), blob)
	if err != nil {
		s.log.Warn(ctx, "stored settings are corrupt, using defaults", "err", err)
	}
	if len(skipped) > 0 {
		s.log.Warn(ctx, "ignoring stored settings with unexpected types", "fields", skipped)
	}
	s.current = merged
}

func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Get returns a copy of the current record.
func (s *Store) Get() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// mutate applies fn to a copy of the record and, if fn succeeds, installs
// the copy and persists it.
func (s *Store) mutate(ctx context.Context, fn func(*models.Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.current = next
	s.persistLocked(ctx)
	return nil
}

func (s *Store) persistLocked(ctx context.Context) {
	if !s.hydrated {
		s.log.Debug(ctx, "settings not hydrated yet, write suppressed")
		return
	}

	b, err := json.Marshal(s.current)
	if err != nil {
		s.log.Error(ctx, "error encoding settings", "err", err)
		return
	}
	if err := s.repo.Set(ctx, common.KeyAppSettings, b); err != nil {
		s.log.Error(ctx, "error saving settings", "err", err)
	}
}

// Update replaces one top-level field, named as in the stored JSON
// ("pageSize", "filters", ...). Other fields are untouched.
func (s *Store) Update(ctx context.Context, field string, value any) error {
	return s.mutate(ctx, func(next *models.Settings) error {
		return setField(next, field, value)
	})
}

// UpdateNested sets nestedKey inside an object-valued field and keeps the
// other nested keys. On a non-object field it does nothing.
func (s *Store) UpdateNested(ctx context.Context, field, nestedKey string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	changed, err := setNested(&next, field, nestedKey, value)
	if err != nil || !changed {
		return err
	}
	s.current = next
	s.persistLocked(ctx)
	return nil
}

// GetFilter looks up filters[page][key]. ok is false when the key was never
// set; a key explicitly set to nil returns (nil, true).
func (s *Store) GetFilter(page, key string) (value any, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok = s.current.Filters[page][key]
	return value, ok
}

// SetFilter stores value, including nil, under filters[page][key].
func (s *Store) SetFilter(ctx context.Context, page, key string, value any) error {
	v, err := normalizeValue(value)
	if err != nil {
		return err
	}
	return s.mutate(ctx, func(next *models.Settings) error {
		pf := next.Filters[page]
		if pf == nil {
			pf = map[string]any{}
			next.Filters[page] = pf
		}
		pf[key] = v
		return nil
	})
}

// Filters returns a copy of the filters of page.
func (s *Store) Filters(page string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.current.Filters[page]))
	for k, v := range s.current.Filters[page] {
		out[k] = v
	}
	return out
}

// GetSearchTerm returns "" when no term is stored for page.
func (s *Store) GetSearchTerm(page string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.SearchTerms[page]
}

func (s *Store) SetSearchTerm(ctx context.Context, page, value string) {
	_ = s.mutate(ctx, func(next *models.Settings) error {
		next.SearchTerms[page] = value
		return nil
	})
}

func (s *Store) GetPageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.PageSize
}

// SetPageSize rejects sizes below 1.
func (s *Store) SetPageSize(ctx context.Context, size int) error {
	if size < 1 {
		return fmt.Errorf("%w: page size must be positive, got %d", common.ErrInvalidValue, size)
	}
	return s.mutate(ctx, func(next *models.Settings) error {
		next.PageSize = size
		return nil
	})
}

func (s *Store) SetSidebarOpen(ctx context.Context, open bool) {
	_ = s.mutate(ctx, func(next *models.Settings) error {
		next.SidebarOpen = open
		return nil
	})
}

func (s *Store) GetSort(page string) (models.SortPref, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.current.SortPreferences[page]
	return p, ok
}

func (s *Store) SetSort(ctx context.Context, page, field string, dir models.SortDirection) error {
	if dir != models.SortAsc && dir != models.SortDesc {
		return fmt.Errorf("%w: sort direction %q", common.ErrInvalidValue, dir)
	}
	return s.mutate(ctx, func(next *models.Settings) error {
		next.SortPreferences[page] = models.SortPref{Field: field, Direction: dir}
		return nil
	})
}

func (s *Store) GetColumns(page string) (models.ColumnPrefs, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.current.TableColumns[page]
	if !ok {
		return models.ColumnPrefs{}, false
	}
	return models.ColumnPrefs{
		Visible: append([]string(nil), c.Visible...),
		Order:   append([]string(nil), c.Order...),
	}, true
}

func (s *Store) SetColumns(ctx context.Context, page string, visible, order []string) {
	_ = s.mutate(ctx, func(next *models.Settings) error {
		next.TableColumns[page] = models.ColumnPrefs{
			Visible: append([]string{}, visible...),
			Order:   append([]string{}, order...),
		}
		return nil
	})
}

// GetAutoRefresh returns the interval in seconds; 0 means disabled.
func (s *Store) GetAutoRefresh(page string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.AutoRefresh[page]
}

func (s *Store) SetAutoRefresh(ctx context.Context, page string, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("%w: auto refresh interval must not be negative", common.ErrInvalidValue)
	}
	return s.mutate(ctx, func(next *models.Settings) error {
		next.AutoRefresh[page] = seconds
		return nil
	})
}

// ResetSettings restores the defaults and deletes the stored record.
func (s *Store) ResetSettings(ctx context.Context) {
	s.cancelPending()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = models.DefaultSettings()
	if err := s.repo.Delete(ctx, common.KeyAppSettings); err != nil {
		s.log.Error(ctx, "error deleting settings", "err", err)
	}
}

// ResetPageSettings drops the filters, search term, sort preference and
// column layout of page. Global fields and auto-refresh are kept.
func (s *Store) ResetPageSettings(ctx context.Context, page string) {
	s.cancelPendingPage(page)

	_ = s.mutate(ctx, func(next *models.Settings) error {
		delete(next.Filters, page)
		delete(next.SearchTerms, page)
		delete(next.SortPreferences, page)
		delete(next.TableColumns, page)
		return nil
	})
}
