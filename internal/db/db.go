// Package db embeds the SQL migrations applied by pg.Migrate.
package db

import "embed"

// Migrations holds the goose migrations under the "migrations" directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the path of the migrations inside Migrations.
const MigrationsDir = "migrations"
