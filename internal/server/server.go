package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/pricelist/internal/condition"
	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
	"github.com/smallbiznis/pricelist/internal/config"
	"github.com/smallbiznis/pricelist/internal/pricelist"
	pricelistdomain "github.com/smallbiznis/pricelist/internal/pricelist/domain"
	"github.com/smallbiznis/pricelist/internal/product"
	productdomain "github.com/smallbiznis/pricelist/internal/product/domain"
	"github.com/smallbiznis/pricelist/internal/quote"
	quotedomain "github.com/smallbiznis/pricelist/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	pricelist.Module,
	condition.Module,
	product.Module,
	quote.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.registerAPIRoutes() }),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	priceListSvc pricelistdomain.Service
	conditionSvc conditiondomain.Service
	productSvc   productdomain.Service
	quoteSvc     quotedomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	PriceListSvc pricelistdomain.Service
	ConditionSvc conditiondomain.Service
	ProductSvc   productdomain.Service
	QuoteSvc     quotedomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		priceListSvc: p.PriceListSvc,
		conditionSvc: p.ConditionSvc,
		productSvc:   p.ProductSvc,
		quoteSvc:     p.QuoteSvc,
	}
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", OrgContext())

	v1.GET("/price_lists", s.ListPriceLists)
	v1.POST("/price_lists", s.CreatePriceList)
	v1.GET("/price_lists/default", s.GetDefaultPriceList)
	v1.GET("/price_lists/:id", s.GetPriceListByID)
	v1.PATCH("/price_lists/:id", s.UpdatePriceList)
	v1.DELETE("/price_lists/:id", s.DeletePriceList)
	v1.GET("/price_lists/:id/products", s.ListPriceListProducts)
	v1.POST("/price_lists/:id/quote", s.QuotePrice)
	v1.GET("/price_lists/:id/conditions", s.ListPriceListConditions)
	v1.POST("/price_lists/:id/conditions", s.CreatePriceListCondition)

	v1.GET("/conditions/:id", s.GetConditionByID)
	v1.PATCH("/conditions/:id", s.UpdateCondition)
	v1.DELETE("/conditions/:id", s.DeleteCondition)

	v1.GET("/products", s.ListProducts)
	v1.POST("/products", s.CreateProduct)
	v1.GET("/products/:id", s.GetProductByID)
}
