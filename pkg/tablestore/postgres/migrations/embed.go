// Package migrations embeds the SQL migrations for the self-hosted store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
