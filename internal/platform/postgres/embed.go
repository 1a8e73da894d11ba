package postgres

import "embed"

// Migrations holds the goose SQL migrations compiled into the binary, so
// deployments need no migration files on disk.
//
//go:embed migrations/*.sql
var Migrations embed.FS
