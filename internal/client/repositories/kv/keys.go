package kv

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/dmitrijs2005/societyhub/internal/logging"
)

// AppKeys returns every storage key owned by the client.
func AppKeys() []string {
	return []string{
		common.KeyAccessToken,
		common.KeyRefreshToken,
		common.KeyUser,
		common.KeyAppSettings,
		common.KeyTheme,
	}
}

// RemoveUnknown deletes every stored key that is not in allowed and returns
// the keys it removed. A nil allowed list means AppKeys().
func RemoveUnknown(ctx context.Context, repo Repository, log logging.Logger, allowed []string) []string {
	if allowed == nil {
		allowed = AppKeys()
	}

	all, err := repo.List(ctx)
	if err != nil {
		log.Error(ctx, "error listing storage keys", "err", err)
		return nil
	}

	var stale []string
	for k := range all {
		if !slices.Contains(allowed, k) {
			stale = append(stale, k)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	slices.Sort(stale)

	if err := repo.DeleteMany(ctx, stale...); err != nil {
		log.Error(ctx, "error removing stale storage keys", "err", err, "keys", stale)
		return nil
	}
	return stale
}

// ClearApp deletes every key in AppKeys.
func ClearApp(ctx context.Context, repo Repository, log logging.Logger) {
	if err := repo.DeleteMany(ctx, AppKeys()...); err != nil {
		log.Error(ctx, "error clearing app storage", "err", err)
	}
}
