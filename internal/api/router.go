package api

import (
	"net/http"

	"github.com/factchecker/factlens/internal/config"
	"github.com/factchecker/factlens/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg *config.Config, handler *Handler, store database.Store) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(RequestIDMiddleware)
	r.Use(SentryMiddleware)
	r.Use(LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(AuditMiddleware(store))
			r.Use(RateLimitMiddleware(cfg.RateLimits.RequestsPerMinute))

			r.With(MaxBodyBytes(cfg.Server.MaxBodyBytes)).Post("/verify", handler.Verify)
			r.With(MaxBodyBytes(cfg.Server.MaxBodyBytes)).Post("/chat", handler.Chat)
			r.With(MaxBodyBytes(cfg.Server.MaxUploadBytes)).Post("/upload", handler.Upload)

			r.Get("/videos", handler.ListVideos)
			r.Get("/videos/{id}", handler.GetVideo)

			r.Get("/audit", handler.GetAuditLogs)
		})
	})

	if cfg.Server.EnableUI {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(indexPage))
		})
	}

	return r
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
    <title>factlens</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #2563eb; }
        code { background: #f1f5f9; padding: 2px 6px; border-radius: 4px; }
        .endpoint { margin: 10px 0; }
    </style>
</head>
<body>
    <h1>factlens API</h1>
    <p>Transcript chat and claim verification are running. Use the endpoints below:</p>

    <h2>Endpoints</h2>
    <div class="endpoint"><code>GET /api/health</code> - Health check</div>
    <div class="endpoint"><code>POST /api/verify</code> - Verify a claim, body <code>{"claim": "..."}</code></div>
    <div class="endpoint"><code>POST /api/chat</code> - Ask about a transcript, body <code>{"transcript": "...", "question": "..."}</code></div>
    <div class="endpoint"><code>POST /api/upload</code> - Transcribe a video, multipart field <code>video</code></div>
    <div class="endpoint"><code>GET /api/videos</code> - List transcribed videos</div>
    <div class="endpoint"><code>GET /api/videos/{id}</code> - Get a transcribed video</div>
    <div class="endpoint"><code>GET /api/audit</code> - Request audit log</div>
</body>
</html>`
