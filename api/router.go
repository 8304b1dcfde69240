package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// NewRouter wires the web view endpoints and the metrics handler
func NewRouter(h *Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Route("/api", func(rr chi.Router) {
		rr.Get("/prizes", h.Prizes)

		rr.Route("/sessions/{userID}", func(sr chi.Router) {
			sr.Post("/", h.EnterSession)
			sr.Get("/", h.GetSession)
			sr.Delete("/", h.LeaveSession)
			sr.Post("/spin", h.Spin)
		})

		rr.Get("/users/{userID}/spins", h.History)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"duration":  time.Since(start),
			"requestID": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
