package baskets

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/webshop/internal/hal"
	"github.com/matheusmosca/webshop/internal/problem"
	"github.com/matheusmosca/webshop/internal/products"
)

// BasketUseCaseInterface define a interface para o use case
type BasketUseCaseInterface interface {
	GetBasket(ctx context.Context, id int64) (*Basket, error)
	GetBasketProduct(ctx context.Context, basketID, basketProductID int64) (*BasketProduct, error)
}

// BasketHandler contém os handlers HTTP
type BasketHandler struct {
	useCase BasketUseCaseInterface
	tracer  trace.Tracer
}

// NewBasketHandler cria uma nova instância de BasketHandler
func NewBasketHandler(useCase BasketUseCaseInterface, tracer trace.Tracer) *BasketHandler {
	return &BasketHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// RegisterRoutes registra as rotas de /basket
func (h *BasketHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/basket/:id", h.GetBasket)
	r.GET("/basket/:id/products/:basketProductId", h.GetBasketProduct)
}

type basketView struct {
	ID               int64           `json:"id"`
	NumberOfProducts int             `json:"numberOfProducts"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
}

type basketProductView struct {
	*BasketProduct
	Total decimal.Decimal `json:"total"`
}

func basketModel(l hal.Linker, b *Basket) *hal.Resource {
	lines := make([]*hal.Resource, 0, len(b.Products))
	for _, bp := range b.Products {
		lines = append(lines, basketProductModel(l, bp))
	}

	res := hal.NewResource(basketView{
		ID:               b.ID,
		NumberOfProducts: b.NumberOfProducts,
		TotalPrice:       b.TotalPrice(),
	})
	res.Links.Add("self", l.Link("/basket/%d", b.ID))
	res.Links.Add("order", l.Link("/orders/%d", b.OrderID))
	res.Embed("products", lines)
	return res
}

func basketProductModel(l hal.Linker, bp *BasketProduct) *hal.Resource {
	res := hal.NewResource(basketProductView{BasketProduct: bp, Total: bp.LineTotal()})
	res.Links.Add("self", l.Link("/basket/%d/products/%d", bp.BasketID, bp.ID))
	res.Links.Add("basket", l.Link("/basket/%d", bp.BasketID))
	res.Links.Add("product", l.LinkPath(products.Href(bp.ProductID)))
	return res
}

func (h *BasketHandler) GetBasket(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_basket")
	defer span.End()

	id, err := problem.PathInt64(c, "id")
	if err != nil {
		problem.Write(c, err)
		return
	}
	span.SetAttributes(attribute.Int64("basket_id", id))

	basket, err := h.useCase.GetBasket(ctx, id)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}

	hal.Render(c, http.StatusOK, basketModel(hal.NewLinker(c.Request), basket))
}

func (h *BasketHandler) GetBasketProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_basket_product")
	defer span.End()

	basketID, err := problem.PathInt64(c, "id")
	if err != nil {
		problem.Write(c, err)
		return
	}
	basketProductID, err := problem.PathInt64(c, "basketProductId")
	if err != nil {
		problem.Write(c, err)
		return
	}
	span.SetAttributes(
		attribute.Int64("basket_id", basketID),
		attribute.Int64("basket_product_id", basketProductID),
	)

	bp, err := h.useCase.GetBasketProduct(ctx, basketID, basketProductID)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}

	hal.Render(c, http.StatusOK, basketProductModel(hal.NewLinker(c.Request), bp))
}
