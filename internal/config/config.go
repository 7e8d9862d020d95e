package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"OrderRelay/internal/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（config.yaml + 环境变量），加载后只读
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`  // 服务器配置
	Trading TradingConfig `mapstructure:"trading"` // 交易 / CLOB 配置
	HTTP    HTTPConfig    `mapstructure:"http"`    // 出站 HTTP 配置
	Log     LogConfig     `mapstructure:"log"`     // 日志配置
	Sweeper SweeperConfig `mapstructure:"sweeper"` // 批量撤单循环
	Chain   ChainConfig   `mapstructure:"chain"`   // Polygon RPC（余额查询）
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         int      `mapstructure:"port"`          // 服务端口
	Mode         string   `mapstructure:"mode"`          // Gin运行模式：debug/release/test
	SharedSecret string   `mapstructure:"shared_secret"` // x-api-key 共享密钥，为空则不校验
	CORSOrigins  []string `mapstructure:"cors_origins"`  // 允许跨域的来源
}

// TradingConfig 交易相关配置
type TradingConfig struct {
	PrivateKey    string `mapstructure:"private_key"`    // EOA 私钥（0x + 64 hex）
	ProxyAddress  string `mapstructure:"proxy_address"`  // Polymarket 代理钱包地址
	SignatureType int    `mapstructure:"signature_type"` // 1=Magic/email 代理，2=浏览器钱包代理
	ClobHost      string `mapstructure:"clob_host"`      // CLOB API 地址
	GammaHost     string `mapstructure:"gamma_host"`     // Gamma API 地址
	ChainID       int64  `mapstructure:"chain_id"`       // 137 / 80001 / 80002
	APIKey        string `mapstructure:"api_key"`        // REST 兜底使用的 x-api-key；三项齐全时同时作为 L2 凭证
	APISecret     string `mapstructure:"api_secret"`
	APIPassphrase string `mapstructure:"api_passphrase"`

	// 下面两项接受 1/true/yes，单独解析
	DryRun        bool `mapstructure:"-"`
	DryRunResolve bool `mapstructure:"-"`
}

// HTTPConfig 出站请求配置
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // 单次请求超时（秒）
	Proxy          string `mapstructure:"proxy"`           // 代理地址
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // debug/info/warn/error
	File       string `mapstructure:"file"`         // 为空只输出到控制台
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单文件最大 MB
	MaxBackups int    `mapstructure:"max_backups"`  // 保留旧文件数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 保留天数
}

// SweeperConfig 批量撤单循环配置
type SweeperConfig struct {
	Interval   time.Duration `mapstructure:"interval"`     // 轮询间隔
	RatePerSec float64       `mapstructure:"rate_per_sec"` // 每秒撤单上限
}

// ChainConfig 链上余额查询
type ChainConfig struct {
	RPCURL      string `mapstructure:"rpc_url"`
	USDCAddress string `mapstructure:"usdc_address"` // USDC.e，6 位小数
}

// envBindings 配置键 -> 环境变量
var envBindings = map[string]string{
	"server.port":             "PORT",
	"server.mode":             "GIN_MODE",
	"server.shared_secret":    "SHEETS_SECRET",
	"trading.private_key":     "PRIVATE_KEY",
	"trading.proxy_address":   "POLYMARKET_PROXY",
	"trading.signature_type":  "SIGNATURE_TYPE",
	"trading.clob_host":       "CLOB_HOST",
	"trading.gamma_host":      "GAMMA_HOST",
	"trading.chain_id":        "CHAIN_ID",
	"trading.dry_run":         "DRY_RUN",
	"trading.dry_run_resolve": "DRY_RUN_RESOLVE",
	"trading.api_key":         "API_KEY",
	"trading.api_secret":      "API_SECRET",
	"trading.api_passphrase":  "API_PASSPHRASE",
	"http.timeout_seconds":    "HTTP_TIMEOUT",
	"http.proxy":              "HTTP_PROXY_URL",
	"log.level":               "LOG_LEVEL",
	"log.file":                "LOG_FILE",
	"sweeper.interval":        "CANCEL_INTERVAL",
	"sweeper.rate_per_sec":    "CANCEL_RATE",
	"chain.rpc_url":           "POLYGON_RPC",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8010)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shared_secret", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("trading.private_key", "")
	v.SetDefault("trading.proxy_address", "")
	v.SetDefault("trading.signature_type", 2)
	v.SetDefault("trading.clob_host", "https://clob.polymarket.com")
	v.SetDefault("trading.gamma_host", "https://gamma-api.polymarket.com")
	v.SetDefault("trading.chain_id", 137)
	v.SetDefault("trading.dry_run", "true")
	v.SetDefault("trading.dry_run_resolve", "false")
	v.SetDefault("trading.api_key", "")
	v.SetDefault("trading.api_secret", "")
	v.SetDefault("trading.api_passphrase", "")
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("http.proxy", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("sweeper.interval", 30*time.Second)
	v.SetDefault("sweeper.rate_per_sec", 5.0)
	v.SetDefault("chain.rpc_url", "https://polygon-rpc.com")
	v.SetDefault("chain.usdc_address", "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
}

// LoadConfig 加载配置文件（config/config.yaml，可不存在），环境变量与 .env 覆盖同名字段
func LoadConfig() (*Config, error) {
	// .env 可不存在
	_ = godotenv.Load()
	return load(viper.New(), "./config")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", env, err)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.Trading.DryRun = Truthy(v.GetString("trading.dry_run"))
	cfg.Trading.DryRunResolve = Truthy(v.GetString("trading.dry_run_resolve"))
	cfg.Trading.PrivateKey = strings.TrimSpace(cfg.Trading.PrivateKey)
	cfg.Trading.ProxyAddress = strings.TrimSpace(cfg.Trading.ProxyAddress)
	cfg.Trading.ClobHost = strings.TrimSuffix(strings.TrimSpace(cfg.Trading.ClobHost), "/")
	cfg.Trading.GammaHost = strings.TrimSuffix(strings.TrimSpace(cfg.Trading.GammaHost), "/")
	if cfg.HTTP.TimeoutSeconds <= 0 {
		cfg.HTTP.TimeoutSeconds = 20
	}
	if cfg.Sweeper.Interval <= 0 {
		return nil, fmt.Errorf("sweeper.interval（CANCEL_INTERVAL）必须大于 0，当前为 %s", cfg.Sweeper.Interval)
	}
	return &cfg, nil
}

// Truthy 1/true/yes（忽略大小写）为真
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Timeout 出站请求超时
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// L2Credentials 配置中的 CLOB L2 凭证（可能不完整）
func (t TradingConfig) L2Credentials() model.APICredentials {
	return model.APICredentials{
		Key:        strings.TrimSpace(t.APIKey),
		Secret:     strings.TrimSpace(t.APISecret),
		Passphrase: strings.TrimSpace(t.APIPassphrase),
	}
}

// AuthRequired 是否要求 x-api-key
func (s ServerConfig) AuthRequired() bool {
	return s.SharedSecret != ""
}

// MaskSecret 只保留末尾 keep 个字符，其余替换为 *
func MaskSecret(s string, keep int) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= keep {
		return s
	}
	return strings.Repeat("*", len(r)-keep) + string(r[len(r)-keep:])
}
