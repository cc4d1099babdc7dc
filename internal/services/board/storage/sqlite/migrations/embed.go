package migrations

import "embed"

// FS contains embedded SQLite migrations for the control journal.
//
//go:embed *.sql
var FS embed.FS
