package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	authhttp "github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/http"
	cataloghttp "github.com/dmehra2102/plasto-orders/internal/catalog/infrastructure/http"
	orderhttp "github.com/dmehra2102/plasto-orders/internal/order/infrastructure/http"
	"github.com/dmehra2102/plasto-orders/pkg/metrics"
	"github.com/dmehra2102/plasto-orders/pkg/web"
)

type Handlers struct {
	Auth    *authhttp.Handler
	Orders  *orderhttp.Handler
	Catalog *cataloghttp.Handler
}

// NewRouter assembles the public HTTP surface. Order routes sit behind
// bearer authentication; auth and product routes handle their own.
func NewRouter(log *slog.Logger, h Handlers, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog(log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{"message": "Plasto orders API"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", h.Auth.Routes())
		r.With(h.Auth.RequireManager).Mount("/orders", h.Orders.Routes())
		r.Mount("/products", h.Catalog.Routes())
	})

	return otelhttp.NewHandler(r, "orders-api")
}

func requestLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
