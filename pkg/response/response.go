package response

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/tieba/pkg/logger"
)

// Response 统一返回结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func write(c *gin.Context, status int, msg string, data interface{}) {
	c.JSON(status, Response{Code: status, Message: msg, Data: data})
}

func Success(c *gin.Context, data interface{}) { write(c, http.StatusOK, "success", data) }

func Created(c *gin.Context, data interface{}) { write(c, http.StatusCreated, "created", data) }

func BadRequest(c *gin.Context, msg string) { write(c, http.StatusBadRequest, msg, nil) }

func Unauthorized(c *gin.Context, msg string) {
	c.Abort()
	write(c, http.StatusUnauthorized, msg, nil)
}

func Forbidden(c *gin.Context, msg string) { write(c, http.StatusForbidden, msg, nil) }

func NotFound(c *gin.Context, msg string) { write(c, http.StatusNotFound, msg, nil) }

func TooManyRequests(c *gin.Context) {
	c.Abort()
	write(c, http.StatusTooManyRequests, "too many requests", nil)
}

// Unavailable 存储暂不可用，客户端可重试
func Unavailable(c *gin.Context, err error) {
	report(c, err)
	write(c, http.StatusServiceUnavailable, "service unavailable", nil)
}

// InternalError 记录并上报，不向客户端暴露细节
func InternalError(c *gin.Context, err error) {
	report(c, err)
	write(c, http.StatusInternalServerError, "internal server error", nil)
}

func report(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
		return
	}
	if sentry.CurrentHub().Client() != nil {
		sentry.CaptureException(err)
	}
}
