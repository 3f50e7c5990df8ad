// Package migrations holds the Postgres schema, applied with bun's migrator.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the ordered registry; each file registers itself on init.
var Migrations = migrate.NewMigrations()
