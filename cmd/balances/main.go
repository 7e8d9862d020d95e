// balances 打印 EOA（及代理钱包）的 MATIC/POL 与 USDC.e 余额
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"OrderRelay/internal/chain"
	"OrderRelay/internal/config"

	"github.com/olekukonko/tablewriter"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}
	eoa, err := chain.AddressFromKey(cfg.Trading.PrivateKey)
	if err != nil {
		log.Fatalf("PRIVATE_KEY 无效: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout())
	defer cancel()

	reader, err := chain.DialBalanceReader(ctx, cfg.Chain.RPCURL, cfg.Chain.USDCAddress)
	if err != nil {
		log.Fatalf("连接 Polygon RPC 失败: %v", err)
	}
	defer reader.Close()

	targets := [][2]string{{"EOA", eoa}}
	if cfg.Trading.ProxyAddress != "" {
		targets = append(targets, [2]string{"Proxy", cfg.Trading.ProxyAddress})
	}

	var rows []chain.Balance
	for _, t := range targets {
		b, err := reader.Snapshot(ctx, t[0], t[1])
		if err != nil {
			log.Fatalf("查询 %s 余额失败: %v", t[0], err)
		}
		rows = append(rows, b)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Wallet", "Address", "MATIC", "USDC.e")
	for _, b := range rows {
		table.Append(b.Label, b.Address, b.Native.StringFixed(6), b.USDC.StringFixed(2))
	}
	table.Render()
	fmt.Printf("RPC: %s  (%s)\n", cfg.Chain.RPCURL, time.Now().Format(time.RFC3339))
}
