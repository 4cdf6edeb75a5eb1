package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/corebank/services/shared/errs"
)

type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Message: message})
}

// RespondWithDomainError maps the shared error taxonomy onto HTTP: business
// errors keep their catalogue status and code, system errors become 503, and
// anything else is a 500.
func RespondWithDomainError(c *gin.Context, err error) {
	if be, ok := errs.AsBusiness(err); ok {
		c.JSON(be.Status, ErrorResponse{Code: be.Code, Message: be.Message})
		return
	}
	if errs.IsSystem(err) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "service temporarily unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
}

// RequestLogger logs one structured entry per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
