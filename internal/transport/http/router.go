package http

import (
	"net/http"
	"time"

	"course-quiz-service/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter mounts the REST API, the WebSocket endpoint and /healthz.
func NewRouter(service *app.AttemptService, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// The WebSocket connection is long-lived, so it stays outside the request timeout.
	r.Get("/ws", NewWSHandler(service).ServeWS)

	api := NewAttemptHandler(service)
	r.Group(func(r chi.Router) {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		r.Use(middleware.Timeout(timeout))
		r.Route("/courses/{courseRef}/tests/{testID}", func(r chi.Router) {
			r.Post("/start", api.Start)
			r.Post("/submit", api.Submit)
			r.Get("/attempts", api.ListAttempts)
			r.Get("/attempts/{attemptID}", api.Result)
		})
	})
	return r
}
