package main

import (
	"context"
	"net/http"
	"time"

	"lucky-wheel/internal/adminbot"
	"lucky-wheel/internal/audit"
	"lucky-wheel/internal/config"
	"lucky-wheel/internal/game"
	"lucky-wheel/internal/logging"
	"lucky-wheel/internal/queue"
	"lucky-wheel/internal/resultpush"
	"lucky-wheel/internal/store"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)
	defer logging.Close()

	st, err := store.Open(cfg.Server.DBDriver, cfg.Server.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	ctx := context.Background()
	if st.IsConfigured() {
		if err := st.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		if err := st.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensure schema failed")
		}
	} else {
		log.Warn().Msg("no DATABASE_DSN, running degraded: results and audit will not persist")
	}

	aud := audit.New(st)
	q := queue.New(cfg.Game.MaxQueueSize)
	coord := game.NewCoordinator(st, aud, q, game.OptionsFromConfig(cfg.Game))
	coord.StartSweeper(ctx)

	dispatcher := adminbot.NewDispatcher(coord, st, aud, cfg.Server.AdminIDs)
	botSrv := adminbot.NewServer(dispatcher, cfg.Server.AdminAPIKey)
	botSrv.StartAnnouncer(ctx, coord.Events())

	pushCfg, err := resultpush.ConfigFromServer(cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("result push config failed")
	}
	pushMgr := resultpush.NewManager(pushCfg)
	if err := pushMgr.Start(ctx, coord.Events()); err != nil {
		log.Fatal().Err(err).Msg("result push start failed")
	}

	r := newRouter(st, cfg.Server, coord, aud, botSrv)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
