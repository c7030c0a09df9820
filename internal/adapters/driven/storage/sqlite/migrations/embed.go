// Package migrations holds the SQLite schema of the raw repository:
// records, relations, the change queue and holdings.
package migrations

import "embed"

// FS holds the NNN_name.up.sql files applied by sqldb.Migrate.
//
//go:embed *.sql
var FS embed.FS
