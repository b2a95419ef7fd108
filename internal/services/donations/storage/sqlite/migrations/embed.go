package migrations

import "embed"

// FS contains embedded SQLite migrations for donations storage.
//
//go:embed *.sql
var FS embed.FS
