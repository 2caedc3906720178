// Package middleware provides generic gin middleware used by the HTTP server:
// request IDs, structured request logging, and panic recovery.
package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

// HeaderXRequestID is the header carrying the request ID.
const HeaderXRequestID = "X-Request-ID"

// ContextRequestID is the gin context key the request ID is stored under.
const ContextRequestID = "request_id"

// RequestID propagates an incoming X-Request-ID header or generates a new
// one, storing it in the gin context and echoing it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderXRequestID, requestID)
		c.Next()
	}
}

// GetRequestID returns the request ID from the gin context, or empty.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
