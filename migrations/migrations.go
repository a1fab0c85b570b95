// Package migrations embeds the PostgreSQL schema migrations of the profile
// row store.
package migrations

import "embed"

// FS holds the numbered golang-migrate up/down scripts.
//
//go:embed *.sql
var FS embed.FS

//Personal.AI order the ending
