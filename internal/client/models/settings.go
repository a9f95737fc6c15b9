package models

import "encoding/json"

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ColumnPrefs holds the visible columns of a table and their order.
type ColumnPrefs struct {
	Visible []string `json:"visible" yaml:"visible"`
	Order   []string `json:"order" yaml:"order"`
}

type SortPref struct {
	Field     string        `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

type Notifications struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Sound   bool `json:"sound" yaml:"sound"`
	Email   bool `json:"email" yaml:"email"`
}

// Settings is the UI preference record persisted under the app_settings key.
// Field names on the wire match the blob written by the web frontend.
//
// Per-page maps are keyed by page identifier ("events", "visitors", ...).
type Settings struct {
	SidebarOpen     bool                      `json:"sidebarOpen" yaml:"sidebarOpen"`
	PageSize        int                       `json:"pageSize" yaml:"pageSize"`
	Filters         map[string]map[string]any `json:"filters" yaml:"filters"`
	SearchTerms     map[string]string         `json:"searchTerms" yaml:"searchTerms"`
	TableColumns    map[string]ColumnPrefs    `json:"tableColumns" yaml:"tableColumns"`
	SortPreferences map[string]SortPref       `json:"sortPreferences" yaml:"sortPreferences"`
	Notifications   Notifications             `json:"notifications" yaml:"notifications"`
	// AutoRefresh is the refresh interval per page in seconds; 0 disables it.
	AutoRefresh map[string]int `json:"autoRefresh" yaml:"autoRefresh"`
}

// DefaultPageSize is the page size of a fresh profile.
const DefaultPageSize = 20

// Page sizes a user may pick.
const (
	MinPageSize = 5
	MaxPageSize = 100
)

// DefaultSettings returns a new default record. Every call returns fresh maps.
func DefaultSettings() Settings {
	return Settings{
		SidebarOpen:     false,
		PageSize:        DefaultPageSize,
		Filters:         map[string]map[string]any{},
		SearchTerms:     map[string]string{},
		TableColumns:    map[string]ColumnPrefs{},
		SortPreferences: map[string]SortPref{},
		Notifications: Notifications{
			Enabled: true,
			Sound:   true,
			Email:   false,
		},
		AutoRefresh: map[string]int{},
	}
}

// Normalize replaces nil maps with empty ones so the record always
// serializes with objects rather than nulls.
func (s *Settings) Normalize() {
	if s.Filters == nil {
		s.Filters = map[string]map[string]any{}
	}
	if s.SearchTerms == nil {
		s.SearchTerms = map[string]string{}
	}
	if s.TableColumns == nil {
		s.TableColumns = map[string]ColumnPrefs{}
	}
	if s.SortPreferences == nil {
		s.SortPreferences = map[string]SortPref{}
	}
	if s.AutoRefresh == nil {
		s.AutoRefresh = map[string]int{}
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	b, err := json.Marshal(s)
	if err != nil {
		// Settings only holds JSON-representable values.
		panic(err)
	}
	var out Settings
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	out.Normalize()
	return out
}
