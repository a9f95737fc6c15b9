package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	open func(t *testing.T) Repository
}

func backends() []backend {
	return []backend{
		{name: "memory", open: func(t *testing.T) Repository { return NewMemoryRepository() }},
		{name: "sqlite", open: func(t *testing.T) Repository {
			repo, closeFn, err := Open(context.Background(), Options{
				Backend: BackendSQLite,
				DSN:     filepath.Join(t.TempDir(), "profile.db"),
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = closeFn() })
			return repo
		}},
		{name: "redis", open: func(t *testing.T) Repository {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return NewRedisRepository(rdb, "test")
		}},
	}
}

func TestRepository_Contract(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("absent key is nil nil", func(t *testing.T) {
				r := b.open(t)
				v, err := r.Get(ctx, "absent")
				require.NoError(t, err)
				assert.Nil(t, v)
			})

			t.Run("set overwrites", func(t *testing.T) {
				r := b.open(t)
				require.NoError(t, r.Set(ctx, "k", []byte("old")))
				require.NoError(t, r.Set(ctx, "k", []byte("new")))

				v, err := r.Get(ctx, "k")
				require.NoError(t, err)
				assert.Equal(t, []byte("new"), v)
			})

			t.Run("set many then list", func(t *testing.T) {
				r := b.open(t)
				require.NoError(t, r.SetMany(ctx, map[string][]byte{
					"accessToken":  []byte("a"),
					"refreshToken": []byte("r"),
					"user":         []byte(`{"id":1}`),
				}))

				all, err := r.List(ctx)
				require.NoError(t, err)
				assert.Equal(t, map[string][]byte{
					"accessToken":  []byte("a"),
					"refreshToken": []byte("r"),
					"user":         []byte(`{"id":1}`),
				}, all)
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				r := b.open(t)
				require.NoError(t, r.Set(ctx, "k", []byte("v")))
				require.NoError(t, r.Delete(ctx, "k"))
				require.NoError(t, r.Delete(ctx, "k"))

				v, err := r.Get(ctx, "k")
				require.NoError(t, err)
				assert.Nil(t, v)
			})

			t.Run("delete many", func(t *testing.T) {
				r := b.open(t)
				require.NoError(t, r.SetMany(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2"), "c": []byte("3")}))
				require.NoError(t, r.DeleteMany(ctx, "a", "b", "missing"))
				require.NoError(t, r.DeleteMany(ctx))

				all, err := r.List(ctx)
				require.NoError(t, err)
				assert.Equal(t, map[string][]byte{"c": []byte("3")}, all)
			})

			t.Run("clear", func(t *testing.T) {
				r := b.open(t)
				require.NoError(t, r.SetMany(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))
				require.NoError(t, r.Clear(ctx))

				all, err := r.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, all)
			})
		})
	}
}

func TestMemoryRepository_DoesNotAliasValues(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	out[1] = 'Y'
	again, _ := r.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestRedisRepository_NamespacesKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	alice := NewRedisRepository(rdb, "alice")
	bob := NewRedisRepository(rdb, "bob")

	require.NoError(t, alice.Set(ctx, "user", []byte("a")))
	require.NoError(t, bob.Set(ctx, "user", []byte("b")))

	assert.True(t, mr.Exists("alice:user"))
	assert.True(t, mr.Exists("bob:user"))

	require.NoError(t, alice.Clear(ctx))

	v, err := bob.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), v)

	v, err = alice.Get(ctx, "user")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRedisRepository_ErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	r := NewRedisRepository(rdb, "ns")

	mr.SetError("boom")

	_, err := r.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get kv[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set kv[k]")
}
