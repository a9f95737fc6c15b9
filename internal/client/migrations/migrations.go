// Package migrations embeds the goose migrations for the durable key/value
// store, one directory per SQL dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
