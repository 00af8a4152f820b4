package app

import (
	"embed"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MustMigratePostgres brings the schema up to date using the embedded
// migrations. Goose needs a database/sql handle, so it borrows one from
// the pgx pool for the duration of the run.
func MustMigratePostgres() {
	db := stdlib.OpenDBFromPool(globalPostgresPool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrationsFS)

	err := goose.SetDialect("postgres")
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to set goose dialect")
		panic(err)
	}

	err = goose.Up(db, "migrations")
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to run migrations")
		panic(err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read migration version")
		panic(err)
	}
	globalLogger.Info().
		Int64("version", version).
		Msg("migrated postgres schema")
}
