// Package migrations embeds the goose SQL migrations into the binary.
//
// Each supported dialect has its own directory; the database package picks the
// one matching the configured driver.
package migrations

import (
	"embed"

	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
}
