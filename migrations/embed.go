// Package migrations embeds the schema migrations and seed data so
// the migrate binary runs without a checkout alongside it.
package migrations

import "embed"

//go:embed sql seeds
var Files embed.FS
