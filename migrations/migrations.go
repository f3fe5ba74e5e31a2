// Package migrations embeds the SQL schema files applied by db.Migrate.
package migrations

import "embed"

// Files holds every NNN_description.sql file in this directory.
//
//go:embed *.sql
var Files embed.FS
