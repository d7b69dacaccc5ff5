// Package migrations holds the schema, written in the Postgres dialect.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
