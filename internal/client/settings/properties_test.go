package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/dmitrijs2005/societyhub/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any subset of top-level fields present in the stored blob, the
// hydrated record equals the defaults with exactly those fields replaced.
func TestProperty_MergeKeepsDefaultsForAbsentFields(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("hydrated record is defaults overlaid by stored subset", prop.ForAll(
		func(withPageSize, withSidebar, withNotifications, withTerms bool, pageSize int, sidebar bool, term string) bool {
			stored := map[string]any{}
			want := models.DefaultSettings()

			if withPageSize {
				stored["pageSize"] = pageSize
				want.PageSize = pageSize
			}
			if withSidebar {
				stored["sidebarOpen"] = sidebar
				want.SidebarOpen = sidebar
			}
			if withNotifications {
				stored["notifications"] = map[string]bool{"email": true}
				want.Notifications = models.Notifications{Email: true}
			}
			if withTerms {
				stored["searchTerms"] = map[string]string{"events": term}
				want.SearchTerms = map[string]string{"events": term}
			}

			blob, err := json.Marshal(stored)
			if err != nil {
				return false
			}

			repo := kv.NewMemoryRepository()
			if err := repo.Set(context.Background(), common.KeyAppSettings, blob); err != nil {
				return false
			}

			got := Open(context.Background(), repo, logging.NewNop()).Get()
			return cmp.Equal(want, got)
		},
		gen.Bool(), gen.Bool(), gen.Bool(), gen.Bool(),
		gen.IntRange(1, 500), gen.Bool(), gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestProperty_FilterRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("set then get returns the value, page reset removes it", prop.ForAll(
		func(page, key, value string) bool {
			ctx := context.Background()
			repo := kv.NewMemoryRepository()
			s := Open(ctx, repo, logging.NewNop())

			if err := s.SetFilter(ctx, page, key, value); err != nil {
				return false
			}
			got, ok := s.GetFilter(page, key)
			if !ok || got != value {
				return false
			}

			reloaded := Open(ctx, repo, logging.NewNop())
			got, ok = reloaded.GetFilter(page, key)
			if !ok || got != value {
				return false
			}

			s.ResetPageSettings(ctx, page)
			_, ok = s.GetFilter(page, key)
			return !ok
		},
		gen.Identifier(), gen.Identifier(), gen.AlphaString(),
	))

	properties.TestingRun(t)
}
