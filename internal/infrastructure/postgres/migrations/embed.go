// Package migrations embeds the goose SQL migrations for the account store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
