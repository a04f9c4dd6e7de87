// Package biomarker embeds assets shipped with the binary.
package biomarker

import "embed"

// Migrations holds the SQL migrations applied by the migrate subcommand.
//
//go:embed migrations/*.sql
var Migrations embed.FS
