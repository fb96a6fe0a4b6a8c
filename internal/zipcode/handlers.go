package zipcode

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/webshop/internal/hal"
	"github.com/matheusmosca/webshop/internal/problem"
)

// Resolver é satisfeito por *Client
type Resolver interface {
	Lookup(ctx context.Context, zip string) (*ZipCode, error)
}

type Handler struct {
	resolver Resolver
	tracer   trace.Tracer
}

func NewHandler(resolver Resolver, tracer trace.Tracer) *Handler {
	return &Handler{resolver: resolver, tracer: tracer}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/zipcodes/:zip", h.Lookup)
}

func (h *Handler) Lookup(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "lookup_zipcode")
	defer span.End()

	zip := c.Param("zip")
	span.SetAttributes(attribute.String("zip_code", zip))

	result, err := h.resolver.Lookup(ctx, zip)
	if err != nil {
		span.RecordError(err)
		problem.Write(c, err)
		return
	}

	res := hal.NewResource(result)
	res.Links.Add("self", hal.NewLinker(c.Request).Link("/zipcodes/%s", zip))
	hal.Render(c, http.StatusOK, res)
}
