package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	authhttp "github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/http"
	"github.com/dmehra2102/plasto-orders/internal/order/application"
	"github.com/dmehra2102/plasto-orders/internal/order/domain"
	"github.com/dmehra2102/plasto-orders/pkg/apperr"
	"github.com/dmehra2102/plasto-orders/pkg/web"
)

type Handler struct {
	log         *slog.Logger
	service     *application.Service
	idempotency func(http.Handler) http.Handler
	tracer      trace.Tracer
}

// NewHandler expects its routes to be mounted behind authhttp RequireManager.
// idempotency guards order creation and may be nil.
func NewHandler(log *slog.Logger, service *application.Service, idempotency func(http.Handler) http.Handler) *Handler {
	if idempotency == nil {
		idempotency = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		log:         log,
		service:     service,
		idempotency: idempotency,
		tracer:      otel.Tracer("order-http"),
	}
}

// updateOrderReq accepts order_status as an older spelling of status.
type updateOrderReq struct {
	Status      *string       `json:"status"`
	OrderStatus *string       `json:"order_status"`
	Content     []domain.Item `json:"content"`
}

type createOrderReq struct {
	Organization     string        `json:"organization"`
	InvoiceNumber    string        `json:"invoiceNumber"`
	InvoiceNumberAlt string        `json:"invoice_number"`
	Manager          string        `json:"manager"`
	Content          []domain.Item `json:"content"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listOrders)
	r.With(h.idempotency).Post("/", h.createOrder)
	r.Patch("/{id}", h.updateOrder)
	r.Delete("/{id}", h.deleteOrder)

	return r
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	views, err := h.service.List(ctx)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.Int("orders.count", len(views)))
	web.JSON(w, http.StatusOK, views)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}
	invoice := req.InvoiceNumber
	if invoice == "" {
		invoice = req.InvoiceNumberAlt
	}

	actor := authhttp.MustPrincipal(ctx)
	v, err := h.service.Create(ctx, actor.Username, application.CreateRequest{
		Organization:  req.Organization,
		InvoiceNumber: invoice,
		Manager:       req.Manager,
		Content:       req.Content,
	})
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.Int64("order.id", v.ID))
	web.JSON(w, http.StatusCreated, v)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrder")
	defer span.End()

	id, err := orderID(r)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.Int64("order.id", id))

	var req updateOrderReq
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}
	status := req.Status
	if status == nil {
		status = req.OrderStatus
	}

	actor := authhttp.MustPrincipal(ctx)
	v, err := h.service.Update(ctx, actor.Username, id, application.UpdateRequest{Status: status, Content: req.Content})
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	web.JSON(w, http.StatusOK, v)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteOrder")
	defer span.End()

	id, err := orderID(r)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.Int64("order.id", id))

	actor := authhttp.MustPrincipal(ctx)
	if err := h.service.Delete(ctx, actor.Username, id); err != nil {
		web.Error(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func orderID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid order id %q", apperr.ErrInvalidArgument, raw)
	}
	return id, nil
}
