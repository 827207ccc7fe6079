package main

import (
	"flag"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"staylist/internal/adapters/observability"
	"staylist/internal/shared"
)

func main() {
	var (
		command = flag.String("command", "up", "migration command: up, down, or version")
		source  = flag.String("source", "file://migrations", "migration source URL")
	)
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// migration files hold several statements each
	m, err := migrate.New(*source, "mysql://"+cfg.MySQLDSN+"&x-multi-statements=true")
	if err != nil {
		log.Fatal().Err(err).Msg("create migration instance failed")
	}
	defer m.Close()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("migration up failed")
		}
		log.Info().Msg("migrations applied")
	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("migration down failed")
		}
		log.Info().Msg("migrations rolled back")
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatal().Err(err).Msg("read migration version failed")
		}
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("migration version")
	default:
		log.Fatal().Str("command", *command).Msg("unknown migration command")
	}
}
