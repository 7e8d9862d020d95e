package api

import (
	"net/http"

	"OrderRelay/internal/chain"
	"OrderRelay/internal/config"

	"github.com/gin-gonic/gin"
)

const serviceName = "polymarket-order-service"

// SystemHandler 健康检查与配置自检，不返回任何完整密钥
type SystemHandler struct {
	cfg *config.Config
}

func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{cfg: cfg}
}

// nullable 空串输出为 JSON null
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func masked(s string) any {
	return nullable(config.MaskSecret(s, 6))
}

// Health GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": serviceName, "dry_run": h.cfg.Trading.DryRun})
}

// Config GET /config
func (h *SystemHandler) Config(c *gin.Context) {
	t := h.cfg.Trading
	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"clob_host":      t.ClobHost,
		"chain_id":       t.ChainID,
		"has_api_key":    t.APIKey != "",
		"dry_run":        t.DryRun,
		"auth_required":  h.cfg.Server.AuthRequired(),
		"signature_type": t.SignatureType,
		"has_proxy":      t.ProxyAddress != "",
		"proxy_masked":   masked(t.ProxyAddress),
	})
}

// WhoAmI GET /whoami；私钥无效时 eoa_address 为 null
func (h *SystemHandler) WhoAmI(c *gin.Context) {
	t := h.cfg.Trading
	var eoa any
	if t.PrivateKey != "" {
		if addr, err := chain.AddressFromKey(t.PrivateKey); err == nil {
			eoa = addr
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":                            true,
		"eoa_address":                   eoa,
		"proxy_address":                 nullable(t.ProxyAddress),
		"using_proxy":                   t.ProxyAddress != "",
		"signature_type":                t.SignatureType,
		"chain_id":                      t.ChainID,
		"clob_host":                     t.ClobHost,
		"dry_run":                       t.DryRun,
		"has_api_key":                   t.APIKey != "",
		"api_key_masked":                masked(t.APIKey),
		"auth_required_for_place_order": h.cfg.Server.AuthRequired(),
	})
}
