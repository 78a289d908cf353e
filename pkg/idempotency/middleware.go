package idempotency

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmehra2102/plasto-orders/pkg/web"
)

const HeaderKey = "Idempotency-Key"

// Middleware rejects a replayed Idempotency-Key with 409. Requests without
// the header pass through. A key is only kept once the wrapped handler
// answers 2xx, so a failed request can be retried with the same key.
// subject scopes keys per caller; it receives the request after upstream
// middleware has populated its context.
func Middleware(log *slog.Logger, store *Store, scope string, subject func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderKey)
			if token == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := store.Key(scope, subject(r), token)
			seen, err := store.Seen(r.Context(), key)
			if err != nil {
				// Redis is advisory here; the request itself is still valid.
				log.Error("idempotency check failed", "key", key, "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				log.Info("duplicate request rejected", "key", key)
				web.JSON(w, http.StatusConflict, map[string]string{"detail": "duplicate request"})
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status < 200 || status >= 300 {
				if err := store.Release(context.WithoutCancel(r.Context()), key); err != nil {
					log.Error("idempotency release failed", "key", key, "err", err)
				}
			}
		})
	}
}
