package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"OrderRelay/internal/adapter/polymarket"
	"OrderRelay/internal/api"
	"OrderRelay/internal/config"
	"OrderRelay/internal/logging"
	"OrderRelay/internal/metrics"
	"OrderRelay/internal/service"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. 加载配置文件（.env + config.yaml + 环境变量）
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logger.WithField("dry_run", cfg.Trading.DryRun).Info("配置文件加载成功")
	if !cfg.Trading.DryRun {
		if err := service.CheckTradingReady(cfg.Trading); err != nil {
			logger.WithError(err).Warn("实盘配置不完整，下单与撤单请求将被拒绝")
		}
	}

	// 3. 组装上游客户端与服务
	m := metrics.New()
	gamma := polymarket.NewGammaClient(cfg, logger)
	trading := polymarket.NewTradingAdapter(cfg, logger)
	rest := polymarket.NewRESTClient(cfg, logger)

	resolver := service.NewMarketResolver(gamma, logger)
	gateway := service.NewOrderGateway(cfg.Trading, resolver, trading, m, logger)
	tracking := service.NewTrackingService(cfg.Trading, trading, rest, m, logger)

	// 4. 配置Gin运行模式（debug/release）并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := api.NewRouter(api.Deps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Gateway:  gateway,
		Tracking: tracking,
		Resolver: resolver,
	})
	logger.Infof("Gin运行模式: %s", gin.Mode())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.WithCORS(cfg.Server.CORSOrigins, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. 启动服务，收到 SIGINT/SIGTERM 后优雅退出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("启动服务失败: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("收到退出信号，正在关闭服务…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("服务关闭超时")
	}
	logger.Info("服务已退出")
}
