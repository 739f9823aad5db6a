// Package db embeds the schema migrations so the binary can bring a fresh
// database up to date at boot without shipping loose SQL files.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
