// cmd/migrator applies or rolls back the embedded SQL migrations.
// Uso: go run ./cmd/migrator --up | --down | --steps=-1 | --version
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Renatopaccha/Dental-Gest/internal/config"
	"github.com/Renatopaccha/Dental-Gest/internal/infra"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		dsn     = flag.String("dsn", "", "database URL (defaults to DATABASE_URL)")
		up      = flag.Bool("up", false, "apply every pending migration")
		down    = flag.Bool("down", false, "roll back every migration")
		steps   = flag.Int("steps", 0, "apply n migrations (negative rolls back)")
		force   = flag.Int("force", -1, "force the schema version and clear the dirty flag")
		version = flag.Bool("version", false, "print the current schema version")
	)
	flag.Parse()

	if *dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		*dsn = cfg.DatabaseURL
	}

	m, err := infra.NewMigrator(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open migrator")
	}
	defer m.Close()

	switch {
	case *force >= 0:
		err = m.Force(*force)
	case *up:
		err = m.Up()
	case *down:
		err = m.Down()
	case *steps != 0:
		err = m.Steps(*steps)
	case *version:
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("migration failed")
	}

	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("version: none")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to read version")
	default:
		fmt.Printf("version: %d dirty: %t\n", v, dirty)
	}
}
