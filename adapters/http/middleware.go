package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/auth"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

const (
	GinContextKeyOperatorID = "operatorID"
	GinContextKeyRequestID  = "requestID"
	HeaderRequestID         = "X-Request-ID"
)

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(GinContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int(logger.FieldStatus, c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String(logger.FieldRequestID, c.GetString(GinContextKeyRequestID)),
		)
	}
}

// ErrorMiddleware renders the last error pushed with c.Error. Details are
// only exposed for client errors.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)

		var body gin.H
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			body = appErr.ToJSON()
			if status < http.StatusInternalServerError && appErr.Details != "" {
				body["details"] = appErr.Details
			}
		} else {
			body = gin.H{"error": "internal server error"}
		}

		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err,
				zap.String("path", c.FullPath()),
				zap.String(logger.FieldRequestID, c.GetString(GinContextKeyRequestID)),
			)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(status, body)
		}
	}
}

func AuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Error(apperror.NewUnauthorized("Authorization header is required", nil))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.Error(apperror.NewUnauthorized("Invalid token format", nil))
			c.Abort()
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			log.Debug("Rejected token", zap.Error(err))
			c.Error(apperror.NewUnauthorized("Invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(GinContextKeyOperatorID, claims.OperatorID)
		c.Next()
	}
}

func GetOperatorIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(GinContextKeyOperatorID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return id, true
}
