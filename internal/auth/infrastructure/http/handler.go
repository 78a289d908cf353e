package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/plasto-orders/internal/auth/application"
	"github.com/dmehra2102/plasto-orders/internal/auth/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
	"github.com/dmehra2102/plasto-orders/pkg/web"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("auth-http"),
	}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type statusReq struct {
	Days *int `json:"days"`
}

type statusResp struct {
	Message string  `json:"message"`
	Expiry  *string `json:"expiry"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.With(h.RequireManager).Patch("/{username}/status", h.setStatus)

	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Login")
	defer span.End()

	var req loginReq
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}
	token, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	web.JSON(w, http.StatusOK, loginResp{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SetSuperuserStatus")
	defer span.End()

	var req statusReq
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}
	actor := MustPrincipal(ctx)
	target := chi.URLParam(r, "username")
	span.SetAttributes(attribute.String("manager.target", target))

	m, err := h.service.GrantSuperuser(ctx, actor.Username, target, req.Days)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	if m.SuperuserExpiry == nil {
		web.JSON(w, http.StatusOK, statusResp{Message: "Superuser status removed from " + target})
		return
	}
	expiry := m.SuperuserExpiry.Format(time.DateOnly)
	web.JSON(w, http.StatusOK, statusResp{
		Message: "Superuser status granted to " + target + " until " + expiry,
		Expiry:  &expiry,
	})
}

type principalKey struct{}

// RequireManager authenticates the bearer token and stores the resolved
// principal in the request context.
func (h *Handler) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			web.Error(w, h.log, apperr.ErrUnauthenticated)
			return
		}
		p, err := h.service.Authenticate(r.Context(), token)
		if err != nil {
			web.Error(w, h.log, err)
			return
		}
		trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("manager.username", p.Username))
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// MustPrincipal is for handlers mounted behind RequireManager.
func MustPrincipal(ctx context.Context) domain.Principal {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		panic("auth: handler mounted without RequireManager")
	}
	return p
}

// Subject names the authenticated caller of r, or "" before RequireManager.
func Subject(r *http.Request) string {
	p, _ := PrincipalFrom(r.Context())
	return p.Username
}
