package products

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/webshop/internal/hal"
	"github.com/matheusmosca/webshop/internal/problem"
)

// ProductUseCaseInterface define a interface para o use case
type ProductUseCaseInterface interface {
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, req ProductRequest) (*Product, error)
	ReplaceProduct(ctx context.Context, id string, req ProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ProductHandler contém os handlers HTTP
type ProductHandler struct {
	useCase ProductUseCaseInterface
	tracer  trace.Tracer
}

// NewProductHandler cria uma nova instância de ProductHandler
func NewProductHandler(useCase ProductUseCaseInterface, tracer trace.Tracer) *ProductHandler {
	return &ProductHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// RegisterRoutes registra as rotas de /products
func (h *ProductHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/products", h.ListProducts)
	r.POST("/products", h.CreateProduct)
	r.GET("/products/:id", h.GetProduct)
	r.PUT("/products/:id", h.ReplaceProduct)
	r.DELETE("/products/:id", h.DeleteProduct)
}

// Href retorna o caminho de um produto
func Href(id string) string {
	return "/products/" + url.PathEscape(id)
}

func toModel(l hal.Linker, p *Product) *hal.Resource {
	res := hal.NewResource(p)
	res.Links.Add("self", l.LinkPath(Href(p.ID)))
	res.Links.Add("products", l.Link("/products"))
	if p.UpsellProduct != nil {
		res.Links.Add("upsellProduct", l.LinkPath(Href(*p.UpsellProduct)))
	}
	return res
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	products, err := h.useCase.ListProducts(ctx)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}
	span.SetAttributes(attribute.Int("product_count", len(products)))

	l := hal.NewLinker(c.Request)
	models := make([]*hal.Resource, 0, len(products))
	for _, p := range products {
		models = append(models, toModel(l, p))
	}

	res := hal.NewResource(nil)
	res.Links.Add("self", l.Link("/products"))
	res.Embed("productList", models)

	hal.Render(c, http.StatusOK, res)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_product")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product_id", id))

	product, err := h.useCase.GetProduct(ctx, id)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}

	hal.Render(c, http.StatusOK, toModel(hal.NewLinker(c.Request), product))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_product")
	defer span.End()

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		problem.Write(c, problem.BadRequest(err, "Malformed product: %s", err.Error()))
		return
	}
	span.SetAttributes(attribute.String("product_id", req.ID))

	product, err := h.useCase.CreateProduct(ctx, req)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}

	h.created(c, product)
}

// ReplaceProduct responde 201 tanto para criação quanto para atualização
func (h *ProductHandler) ReplaceProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "replace_product")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product_id", id))

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		problem.Write(c, problem.BadRequest(err, "Malformed product: %s", err.Error()))
		return
	}

	product, err := h.useCase.ReplaceProduct(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}

	h.created(c, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "delete_product")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product_id", id))

	if err := h.useCase.DeleteProduct(ctx, id); err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) created(c *gin.Context, product *Product) {
	model := toModel(hal.NewLinker(c.Request), product)
	self, _ := model.Links.Get("self")
	c.Header("Location", self.Href)
	hal.Render(c, http.StatusCreated, model)
}
