package main

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"lucky-wheel/internal/adminbot"
	"lucky-wheel/internal/audit"
	"lucky-wheel/internal/config"
	"lucky-wheel/internal/game"
	"lucky-wheel/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func newRouter(st *store.Store, cfg config.ServerConfig, coord *game.Coordinator, aud *audit.Recorder, bot *adminbot.Server) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(st))

	// The websocket console bypasses the logging middleware: httplog
	// wraps the ResponseWriter and breaks the hijack upgrade.
	r.Get("/ws/admin", bot.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Get("/game/state", gameStateHandler(coord))
		r.Get("/game/events", gameEventsHandler(coord))
		r.Get("/results", resultsHandler(st))

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuthMiddleware(cfg.AdminAPIKey))
			r.Use(bodyCaptureMiddleware(4096))

			r.Post("/round/start", roundStartHandler(coord, aud))
			r.Post("/round/end", roundEndHandler(coord, aud))
			r.Post("/spin", spinHandler(coord, aud))
			r.Post("/pause", runStateHandler(aud, "game_pause", coord.Pause))
			r.Post("/resume", runStateHandler(aud, "game_resume", coord.Resume))
			r.Post("/stop", runStateHandler(aud, "game_stop", coord.Stop))
			r.Post("/reset", resetHandler(coord, aud))

			r.Get("/queue", queueListHandler(coord, aud))
			r.Post("/queue", queueAddHandler(coord, aud))
			r.Delete("/queue", queueClearHandler(coord, aud))
			r.Delete("/queue/{number}", queueRemoveHandler(coord, aud))

			r.Get("/audit", auditHandler(aud))
			r.Get("/results", adminResultsHandler(st, aud))
			r.Post("/results/{id}/delete", resultFlagHandler(st, aud, "result_delete"))
			r.Post("/results/{id}/restore", resultFlagHandler(st, aud, "result_restore"))
			r.Delete("/results/{id}", resultFlagHandler(st, aud, "result_purge"))

			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
