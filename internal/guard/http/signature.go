package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/allisson/order-guard/internal/httputil"
)

// SignatureHeader carries the hex HMAC-SHA256 digest of the raw request body.
const SignatureHeader = "X-Printful-Signature"

// VerifySignature reports whether signature is the hex HMAC-SHA256 of body
// under secret, using a constant-time comparison. A missing signature or an
// empty secret always fails closed.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignatureMiddleware authenticates webhook deliveries. The raw body is read
// once here and stashed in the context; an invalid or missing signature
// rejects the request before any further processing or side effects.
func SignatureMiddleware(secret string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Warn("failed to read webhook body", slog.Any("error", err))
			httputil.HandleUnauthorizedGin(c, "Invalid signature")
			return
		}
		setRawBody(c, body)

		if !VerifySignature(body, c.GetHeader(SignatureHeader), secret) {
			logger.Warn("webhook signature verification failed",
				slog.String("remote_addr", c.ClientIP()),
			)
			httputil.HandleUnauthorizedGin(c, "Invalid signature")
			return
		}

		c.Next()
	}
}
