// Package migrations embeds the goose SQL migrations for the users,
// log_entries and feedback tables. The migrate subcommand, AUTO_MIGRATE at
// startup and the integration tests all apply them through goose.NewProvider.
package migrations

import "embed"

// FS holds every *.sql migration.
//
//go:embed *.sql
var FS embed.FS
