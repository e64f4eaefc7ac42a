// Package http provides the webhook intake endpoint and its middleware:
// HMAC signature verification, sliding-window rate limiting, and asynchronous
// dispatch to the order processor.
package http

import (
	"github.com/gin-gonic/gin"
)

// rawBodyKey stores the raw request body in the gin context so the handler
// can reuse the exact bytes the signature was computed over.
const rawBodyKey = "guard/raw_body"

// setRawBody stores the raw request body in the gin context.
func setRawBody(c *gin.Context, body []byte) {
	c.Set(rawBodyKey, body)
}

// getRawBody retrieves the raw request body from the gin context.
func getRawBody(c *gin.Context) ([]byte, bool) {
	value, ok := c.Get(rawBodyKey)
	if !ok {
		return nil, false
	}
	body, ok := value.([]byte)
	return body, ok
}
