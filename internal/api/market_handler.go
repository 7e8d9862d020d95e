package api

import (
	"net/http"
	"strings"

	"OrderRelay/internal/model"
	"OrderRelay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MarketHandler Gamma 市场预览
type MarketHandler struct {
	resolver *service.MarketResolver
	logger   *logrus.Logger
}

// NewMarketHandler 创建 MarketHandler
func NewMarketHandler(resolver *service.MarketResolver, logger *logrus.Logger) *MarketHandler {
	return &MarketHandler{resolver: resolver, logger: logger}
}

// GammaPreview GET /gamma_preview?slug=
func (h *MarketHandler) GammaPreview(c *gin.Context) {
	slug := c.Query("slug")
	if strings.TrimSpace(slug) == "" {
		writeError(c, model.NewValidationError("slug is required"))
		return
	}
	markets, err := h.resolver.Preview(c.Request.Context(), slug)
	if err != nil {
		h.logger.WithError(err).WithField("slug", slug).Warn("GammaPreview failed")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "markets": markets})
}
