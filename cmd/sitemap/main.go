package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"staylist/internal/adapters/observability"
	"staylist/internal/partition"
	"staylist/internal/shared"
	"staylist/internal/sitemap"
	mysqlrepo "staylist/internal/storage/mysql"
)

func main() {
	out := flag.String("out", "sitemap.json", "output path")
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
	doc, err := sitemap.Build(context.Background(), stores.Locations)
	if err != nil {
		log.Fatal().Err(err).Msg("sitemap build failed")
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("sitemap marshal failed")
	}
	if err := os.WriteFile(*out, raw, 0o644); err != nil {
		log.Fatal().Err(err).Msg("sitemap write failed")
	}
	log.Info().Str("out", *out).Msg("sitemap written")
}
