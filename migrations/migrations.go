// Package migrations embeds the SQL migration files for bun/migrate's
// fs.FS-based discovery, the way the teacher's migrations package does.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
