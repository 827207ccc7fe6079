package main

import (
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	server "staylist/internal/adapters/http_server"
	"staylist/internal/adapters/observability"
	redisad "staylist/internal/adapters/redis"
	"staylist/internal/app"
	"staylist/internal/partition"
	"staylist/internal/shared"
	mysqlrepo "staylist/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sqlx.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sqlx.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	router := partition.Default()
	stores := mysqlrepo.New(db, router)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	listing := app.NewListingService(
		stores.Accommodations, stores.Localized, stores.Images,
		stores.Locations, cache, router.Languages(),
	)
	queries := app.NewQueryService(stores.Accommodations, stores.Localized, cache, cfg.CacheTTL)
	signup := app.NewSignupService(stores.Users)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		L:         listing,
		Q:         queries,
		S:         signup,
		Users:     stores.Users,
		Locations: stores.Locations,
		Images:    stores.Images,
		Languages: router.Languages(),
		WriteRPS:  cfg.WriteRPS,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
