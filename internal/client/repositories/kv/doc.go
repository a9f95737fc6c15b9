// Package kv implements the durable key/value storage that replaces browser
// localStorage for the SocietyHub client.
//
// # Backends
//
//   - SQLRepository over SQLite (modernc.org/sqlite), the default: one file
//     per client profile.
//   - SQLRepository over PostgreSQL (pgx stdlib driver), for profiles that
//     several terminals share.
//   - RedisRepository (go-redis), keys namespaced per profile.
//   - MemoryRepository, for tests and in-memory-only sessions.
//
// Open selects a backend from Options and, for SQL backends, applies the
// embedded goose migrations.
//
// # Key registry
//
// AppKeys lists every key the client owns (session keys, the settings blob
// and the theme key). RemoveUnknown and ClearApp perform housekeeping over
// that registry and never fail the caller: storage errors are logged.
package kv
