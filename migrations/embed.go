// Package migrations embeds the journal schema into the binary.
//
// Importing this package for its side effect registers the files with
// the database package:
//
//	import _ "github.com/tendbot/tendbot-core/migrations"
package migrations

import (
	"embed"

	"github.com/tendbot/tendbot-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.Migrations = database.MigrationSource{FS: migrationsFS, Dir: "."}
}
