// Package migrations содержит версионированные SQL-миграции,
// встроенные в бинарник через embed.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
