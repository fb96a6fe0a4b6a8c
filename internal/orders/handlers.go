package orders

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/webshop/internal/hal"
	"github.com/matheusmosca/webshop/internal/problem"
)

// OrderUseCaseInterface define a interface para o use case
type OrderUseCaseInterface interface {
	ListOrders(ctx context.Context) ([]*Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	CompleteOrder(ctx context.Context, id int64) (*Order, error)
	CancelOrder(ctx context.Context, id int64) (*Order, error)
}

// OrderHandler contém os handlers HTTP
type OrderHandler struct {
	useCase OrderUseCaseInterface
	tracer  trace.Tracer
}

// NewOrderHandler cria uma nova instância de OrderHandler
func NewOrderHandler(useCase OrderUseCaseInterface, tracer trace.Tracer) *OrderHandler {
	return &OrderHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// RegisterRoutes registra as rotas de /orders
func (h *OrderHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/orders", h.ListOrders)
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.PUT("/orders/:id/complete", h.CompleteOrder)
	r.DELETE("/orders/:id/cancel", h.CancelOrder)
}

func orderModel(l hal.Linker, o *Order) *hal.Resource {
	res := hal.NewResource(o)
	res.Links.Add("self", l.Link("/orders/%d", o.ID))
	if o.BasketID > 0 {
		res.Links.Add("basket", l.Link("/basket/%d", o.BasketID))
	}
	if o.Status == StatusInProgress {
		res.Links.Add("complete", l.Link("/orders/%d/complete", o.ID))
		res.Links.Add("cancel", l.Link("/orders/%d/cancel", o.ID))
	}
	return res
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_orders")
	defer span.End()

	orders, err := h.useCase.ListOrders(ctx)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}
	span.SetAttributes(attribute.Int("order_count", len(orders)))

	l := hal.NewLinker(c.Request)
	res := hal.NewResource(nil)
	res.Links.Add("self", l.Link("/orders"))
	res.Links.Add("find", hal.Link{Href: l.Href("/orders/{id}"), Templated: true})

	links := make([]hal.Link, 0, len(orders))
	models := make([]*hal.Resource, 0, len(orders))
	for _, o := range orders {
		link := l.Link("/orders/%d", o.ID)
		link.Title = strconv.FormatInt(o.ID, 10)
		links = append(links, link)
		models = append(models, orderModel(l, o))
	}
	res.Links.AddMany("order", links...)
	res.Embed("orderList", models)

	hal.Render(c, http.StatusOK, res)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_order")
	defer span.End()

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		problem.Write(c, problem.BadRequest(err, "Malformed order: %s", err.Error()))
		return
	}
	span.SetAttributes(
		attribute.Int("items", len(req.Items)),
		attribute.Int("products", len(req.Products)),
	)

	order, err := h.useCase.CreateOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}

	span.SetAttributes(
		attribute.Int64("order_id", order.ID),
		attribute.String("total_price", order.TotalPrice.StringFixed(2)),
	)

	model := orderModel(hal.NewLinker(c.Request), order)
	self, _ := model.Links.Get("self")
	c.Header("Location", self.Href)
	hal.Render(c, http.StatusCreated, model)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	h.handleByID(c, "get_order", h.useCase.GetOrder)
}

func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	h.handleByID(c, "complete_order", h.useCase.CompleteOrder)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.handleByID(c, "cancel_order", h.useCase.CancelOrder)
}

func (h *OrderHandler) handleByID(c *gin.Context, operation string, fn func(context.Context, int64) (*Order, error)) {
	ctx, span := h.tracer.Start(c.Request.Context(), operation)
	defer span.End()

	id, err := problem.PathInt64(c, "id")
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}
	span.SetAttributes(attribute.Int64("order_id", id))

	order, err := fn(ctx, id)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}
	span.SetAttributes(attribute.String("status", string(order.Status)))

	hal.Render(c, http.StatusOK, orderModel(hal.NewLinker(c.Request), order))
}
