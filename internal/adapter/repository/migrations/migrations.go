// Package migrations embeds the goose migrations for the SQL entry repository.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
