package migrations

import "embed"

// FS contains embedded goose migrations for multiplier storage.
//
//go:embed *.sql
var FS embed.FS
