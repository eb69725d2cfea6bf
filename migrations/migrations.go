// Package migrations содержит SQL миграции схемы, встраиваемые в бинарь
// команды migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
