package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"roomviz/internal/catalog"
	"roomviz/internal/config"
	"roomviz/internal/lookup"
	"roomviz/internal/vision"
)

// Handlers groups the endpoint handlers mounted by the router.
type Handlers struct {
	Vision  vision.Handler
	Catalog catalog.Handler
	Lookup  lookup.Handler
}

// New constructs the HTTP server with routes and middleware.
func New(cfg config.Config, log zerolog.Logger, h Handlers) *http.Server {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewRouter(log, h),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	log.Info().Str("addr", srv.Addr).Msg("server ready")
	return srv
}

// NewRouter wires the middleware chain and every route.
func NewRouter(log zerolog.Logger, h Handlers) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(Logger(log))
	router.Use(middleware.Recoverer)
	router.Use(CORS)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/generate", func(r chi.Router) {
			r.HandleFunc("/", vision.PostOnly(h.Vision.Generate))
			r.HandleFunc("/gemini", vision.PostOnly(h.Vision.Gemini))
			r.HandleFunc("/openai", vision.PostOnly(h.Vision.OpenAI))
			r.HandleFunc("/room", vision.PostOnly(h.Vision.Room))
		})
		r.HandleFunc("/scrape/ikea", h.Lookup.Scrape)
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.Catalog.List)
			r.Get("/{id}", h.Catalog.Get)
		})
	})

	return router
}
