// Package handler exposes the HTTP facade: the chat API consumed by the
// browser widget plus the operational endpoints.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/avamarket/support-relay-go/internal/catalog"
	"github.com/avamarket/support-relay-go/internal/domain"
	"github.com/avamarket/support-relay-go/internal/infra/observability"
	"github.com/avamarket/support-relay-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// publicDir, when non-empty, is served at the root so the widget assets and
// the API share one origin.
func NewRouter(chatSvc *service.Chat, cat *catalog.Catalog, metrics *observability.Metrics, publicDir string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// The widget is embedded on store pages served from other origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/scenarios", scenariosHandler(cat))
		r.Post("/chat", chatHandler(chatSvc, logger))
		r.Get("/metrics/usage", usageHandler(metrics))
	})

	// --- Static widget assets ---
	if publicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(publicDir)))
	}

	return r
}

// ============================================================
// GET /api/scenarios
// ============================================================

// scenariosHandler returns the full catalog. The widget filters for
// type "public" client-side, so no filtering happens here. The catalog is
// immutable, so repeated calls return identical JSON.
func scenariosHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /api/scenarios")
		defer span.End()

		writeJSON(w, http.StatusOK, cat.All())
	}
}

// ============================================================
// POST /api/chat
// ============================================================

// chatHandler runs one chat exchange. Both message and userId are required;
// validation failures return 400 before any provider call is made.
func chatHandler(chatSvc *service.Chat, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/chat")
		defer span.End()

		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		span.SetAttributes(attribute.String("user.id", req.UserID))

		reply, err := chatSvc.HandleMessage(ctx, req.UserID, req.Message)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, reply)
	}
}

// ============================================================
// GET /api/metrics/usage
// ============================================================

func usageHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetUsageSnapshot())
	}
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
