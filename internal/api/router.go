package api

import (
	"net/http"

	"OrderRelay/internal/config"
	"OrderRelay/internal/metrics"
	"OrderRelay/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Deps 路由依赖，由 main 组装
type Deps struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Metrics  *metrics.Metrics
	Gateway  *service.OrderGateway
	Tracking *service.TrackingService
	Resolver *service.MarketResolver
}

// NewRouter 注册全部路由；gin 模式需由调用方提前设置
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(d.Logger), Metrics(d.Metrics))

	// 仅 debug 模式暴露 pprof
	if gin.Mode() == gin.DebugMode {
		pprof.Register(r)
	}
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	system := NewSystemHandler(d.Config)
	r.GET("/health", system.Health)
	r.GET("/config", system.Config)
	r.GET("/whoami", system.WhoAmI)

	market := NewMarketHandler(d.Resolver, d.Logger)
	r.GET("/gamma_preview", market.GammaPreview)

	orders := NewOrderHandler(d.Gateway, d.Tracking, d.Config.Trading.DryRun, d.Logger)
	authed := r.Group("/", SharedSecret(d.Config.Server.SharedSecret))
	authed.POST("/place_order", orders.PlaceOrder)
	authed.GET("/order_status", orders.OrderStatus)
	authed.GET("/orders_open", orders.OpenOrders)
	authed.GET("/fills", orders.Fills)
	authed.GET("/cancel_order", orders.CancelOrder)

	return r
}

// WithCORS 表格脚本等浏览器调用方需要跨域，允许携带 x-api-key
func WithCORS(origins []string, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", headerAPIKey, headerRequestID},
		ExposedHeaders: []string{headerRequestID},
	}).Handler(h)
}
