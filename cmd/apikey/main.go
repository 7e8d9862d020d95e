// apikey 未配置 L2 凭证时用 PRIVATE_KEY 创建（或派生已有）并打印；-order 查询指定订单
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"OrderRelay/internal/adapter/polymarket"
	"OrderRelay/internal/config"
	"OrderRelay/internal/logging"
)

func main() {
	orderID := flag.String("order", "", "要查询的订单 id")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	session, err := polymarket.NewClobSession(cfg, logger)
	if err != nil {
		log.Fatalf("初始化 CLOB 会话失败: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTP.Timeout())
	defer cancel()

	if !cfg.Trading.L2Credentials().Complete() {
		creds, err := session.Credentials(ctx)
		if err != nil {
			log.Fatalf("创建或派生 API 凭证失败: %v", err)
		}
		fmt.Println("Address:       ", session.Address())
		fmt.Println("API Key:       ", creds.Key)
		fmt.Println("API Secret:    ", creds.Secret)
		fmt.Println("API Passphrase:", creds.Passphrase)
		fmt.Println("请将以上三项写入 .env（API_KEY / API_SECRET / API_PASSPHRASE）")
	} else {
		fmt.Println("使用已配置的 API Key:", config.MaskSecret(cfg.Trading.APIKey, 6))
	}

	if *orderID == "" {
		return
	}
	order, err := session.GetOrder(ctx, *orderID)
	if err != nil {
		log.Fatalf("查询订单失败: %v", err)
	}
	fmt.Println("Order:")
	fmt.Println(string(order))
}
