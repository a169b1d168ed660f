// Package sql embeds the schema migrations applied by the store.
package sql

import "embed"

// Migrations holds the idempotent schema migration files, applied in
// filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
