package api

import (
	"net/http"
	"strconv"

	"OrderRelay/internal/model"
	"OrderRelay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// OrderHandler 下单、订单查询与撤单接口
type OrderHandler struct {
	gateway  *service.OrderGateway
	tracking *service.TrackingService
	dryRun   bool
	logger   *logrus.Logger
}

// NewOrderHandler dryRun 在进程启动时确定
func NewOrderHandler(gateway *service.OrderGateway, tracking *service.TrackingService, dryRun bool, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{gateway: gateway, tracking: tracking, dryRun: dryRun, logger: logger}
}

type placeOrderResponse struct {
	OK bool `json:"ok"`
	*model.PlaceOrderResult
}

// PlaceOrder POST /place_order
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req model.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, model.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	result, err := h.gateway.PlaceOrder(c.Request.Context(), &req, h.dryRun)
	if err != nil {
		h.logger.WithError(err).WithField("client_tag", req.ClientTag).Warn("PlaceOrder failed")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, placeOrderResponse{OK: true, PlaceOrderResult: result})
}

// OrderStatus GET /order_status?order_id=
func (h *OrderHandler) OrderStatus(c *gin.Context) {
	order, err := h.tracking.OrderStatus(c.Request.Context(), c.Query("order_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order": order})
}

// OpenOrders GET /orders_open
func (h *OrderHandler) OpenOrders(c *gin.Context) {
	orders, err := h.tracking.OpenOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": orders})
}

// Fills GET /fills?limit=50
func (h *OrderHandler) Fills(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultFillsLimit)))
	if err != nil {
		writeError(c, model.NewValidationError("limit must be an integer"))
		return
	}
	fills, err := h.tracking.Fills(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "fills": fills})
}

// CancelOrder GET /cancel_order?order_id=
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID := c.Query("order_id")
	result, err := h.tracking.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		h.logger.WithError(err).WithField("order_id", orderID).Warn("CancelOrder failed")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}
