package api

import (
	"errors"
	"net/http"

	"OrderRelay/internal/model"

	"github.com/gin-gonic/gin"
)

var kindStatus = map[model.ErrorKind]int{
	model.KindValidation:    http.StatusBadRequest,
	model.KindAuthorization: http.StatusUnauthorized,
	model.KindResolution:    http.StatusNotFound,
	model.KindConfiguration: http.StatusInternalServerError,
	model.KindUpstream:      http.StatusBadGateway,
	model.KindSubmission:    http.StatusInternalServerError,
}

// statusFor 未识别的错误一律 500
func statusFor(err error) int {
	if status, ok := kindStatus[model.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError 所有接口统一的错误响应
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"ok": false, "error": err.Error()}

	var e *model.Error
	if errors.As(err, &e) {
		body["kind"] = e.Kind
		if len(e.Available) > 0 {
			body["available"] = e.Available
		}
		if e.UpstreamStatus != 0 {
			body["upstream_status"] = e.UpstreamStatus
		}
		if e.UpstreamBody != "" {
			body["upstream_body"] = e.UpstreamBody
		}
	}
	c.AbortWithStatusJSON(status, body)
}
