package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/twilio/twilio-go/client"

	"github.com/calloway/weatherline/internal/util"
)

const requestIDHeader = "X-Request-ID"

// Recovery returns a middleware that recovers from panics, logs the stack
// trace, and returns a 500 to the client so the server continues serving.
func Recovery(logger util.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Interface("panic", r).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"status": "error",
					"error":  "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// RequestID returns a middleware that tags each request with a UUID unless
// the caller already sent one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger returns a middleware that emits a structured log line for
// every request with method, path, status, and latency.
func RequestLogger(logger util.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request")
	}
}

// TwilioAuth returns a middleware that checks the X-Twilio-Signature header
// with the twilio helper library's validator before the handler runs.
func TwilioAuth(authToken string) gin.HandlerFunc {
	validator := client.NewRequestValidator(authToken)
	return func(c *gin.Context) {
		sig := c.GetHeader("X-Twilio-Signature")
		if sig == "" {
			c.String(http.StatusInternalServerError, "No signature")
			c.Abort()
			return
		}
		if !validator.Validate(publicURL(c), postParams(c), sig) {
			c.String(http.StatusForbidden, "Incorrect signature")
			c.Abort()
			return
		}
		c.Next()
	}
}
