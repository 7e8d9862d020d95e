// cancelloop 定时撤销账户下全部挂单，直到收到 SIGINT/SIGTERM
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"OrderRelay/internal/adapter/polymarket"
	"OrderRelay/internal/config"
	"OrderRelay/internal/logging"
	"OrderRelay/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	trading := polymarket.NewTradingAdapter(cfg, logger)
	session, err := trading.Session()
	if err != nil {
		logger.Fatalf("初始化 CLOB 会话失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewCancelSweeper(trading, cfg.Sweeper.RatePerSec, nil, logger)
	logger.WithField("address", session.Address()).Infof("撤单循环启动，间隔 %s", cfg.Sweeper.Interval)
	sweeper.Run(ctx, cfg.Sweeper.Interval)
}
