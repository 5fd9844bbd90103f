// Package db embeds the SQL schema migrations.
package db

import "embed"

// MigrationsDir is the directory inside Migrations holding goose files.
const MigrationsDir = "migrations"

// Migrations holds the goose-formatted SQL migrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS
