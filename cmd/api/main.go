package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "vonage_relay/internal/adapters/http_server"
	"vonage_relay/internal/adapters/observability"
	redisad "vonage_relay/internal/adapters/redis"
	"vonage_relay/internal/adapters/vonage"
	"vonage_relay/internal/app"
	"vonage_relay/internal/shared"
	mysqlrepo "vonage_relay/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// vonage
	var keyPEM []byte
	if cfg.VonageToken == "" {
		if keyPEM, err = cfg.PrivateKey(); err != nil {
			log.Fatal().Err(err).Str("path", cfg.VonageKeyPath).Msg("read private key failed")
		}
	}
	tokens, err := vonage.SelectTokenSource(cfg.VonageToken, cfg.VonageAppID, keyPEM)
	if err != nil {
		log.Fatal().Err(err).Msg("no usable vonage credential")
	}
	gw, err := vonage.NewGateway(vonage.Config{
		APIHost:         cfg.VonageAPIHost,
		MeetingsHost:    cfg.VonageMeetingsHost,
		Tokens:          tokens,
		SignatureSecret: cfg.SignatureSecret,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vonage gateway")
	}

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	msgs := app.NewMessageService(gw, repo)

	// http
	trusted, err := server.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}
	srv := server.New(0)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Msgs:     msgs,
		Webhooks: app.NewWebhookService(gw, repo, cache),
		Q:        app.NewQueryService(gw, repo, cache, cfg.CacheTTL),
		Limiter:  server.NewRateLimiter(cfg.WebhookRPM, trusted...),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
