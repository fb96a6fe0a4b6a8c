// Package api monta o roteador HTTP do webshop.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/matheusmosca/webshop/internal/hal"
	"github.com/matheusmosca/webshop/internal/logging"
	"github.com/matheusmosca/webshop/internal/problem"
	"github.com/matheusmosca/webshop/internal/telemetry"
)

// ServiceName é o nome reportado por /health, independente de SERVICE_NAME
const ServiceName = "webshop"

var ErrRouteNotFound = errors.New("route not found")

// RouteRegistrar é implementado pelos handlers de cada módulo
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

// Options agrupa o que o roteador precisa além dos handlers
type Options struct {
	Service     string
	CORSOrigins []string
	Logger      *zap.Logger
	Metrics     *telemetry.ServerMetrics
}

// NewRouter cria o engine do gin com os middlewares e as rotas de todos os módulos
func NewRouter(opts Options, registrars ...RouteRegistrar) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(logging.Middleware(opts.Logger))
	r.Use(otelgin.Middleware(opts.Service))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.NoRoute(func(c *gin.Context) {
		problem.Write(c, problem.NotFound(ErrRouteNotFound, "No route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
	r.NoMethod(func(c *gin.Context) {
		problem.Write(c, problem.MethodNotAllowed(ErrRouteNotFound, "Method %s is not allowed on %s", c.Request.Method, c.Request.URL.Path))
	})

	r.GET("/", root)
	r.GET("/health", health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	for _, registrar := range registrars {
		registrar.RegisterRoutes(r)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", logging.RequestIDHeader},
		ExposeHeaders:    []string{"Location", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func root(c *gin.Context) {
	linker := hal.NewLinker(c.Request)

	res := hal.NewResource(nil)
	res.Links.Add("self", linker.Link("/"))
	res.Links.Add("orders", linker.Link("/orders"))
	res.Links.Add("products", linker.Link("/products"))
	res.Links.Add("zipcode", hal.Link{Href: linker.Href("/zipcodes/{zip}"), Templated: true})
	hal.Render(c, http.StatusOK, res)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}
