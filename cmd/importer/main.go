package main

import (
	"context"
	"flag"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"staylist/internal/adapters/observability"
	"staylist/internal/importer"
	"staylist/internal/partition"
	"staylist/internal/shared"
	mysqlrepo "staylist/internal/storage/mysql"
)

func main() {
	file := flag.String("file", "locations.json", "path to the location export")
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	db, err := sqlx.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sqlx.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	stores := mysqlrepo.New(db, partition.Default())
	loader := importer.New(stores.Locations, cfg.Workers)

	n, err := loader.LoadFile(context.Background(), *file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("location import failed")
	}
	log.Info().Int("count", n).Str("file", *file).Msg("location import done")
}
