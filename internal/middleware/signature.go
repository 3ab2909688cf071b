package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	twclient "github.com/twilio/twilio-go/client"

	"github.com/roomcast/orchestrator/pkg/response"
)

// SignatureHeader carries the platform's request signature.
const SignatureHeader = "X-Twilio-Signature"

// PlatformSignature verifies that callbacks were sent by the platform. publicBaseURL is the
// externally visible scheme and host the platform calls; when empty the URL is rebuilt
// from the request (X-Forwarded-Proto or TLS, and Host). Empty authToken disables the check.
func PlatformSignature(authToken, publicBaseURL string) gin.HandlerFunc {
	base := strings.TrimRight(publicBaseURL, "/")
	validator := twclient.NewRequestValidator(authToken)
	return func(c *gin.Context) {
		if authToken == "" {
			c.Next()
			return
		}
		sig := c.GetHeader(SignatureHeader)
		if sig == "" {
			response.Forbidden(c, "missing signature")
			c.Abort()
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			response.BadRequest(c, "invalid form body")
			c.Abort()
			return
		}
		params := make(map[string]string, len(c.Request.PostForm))
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
		if !validator.Validate(requestURL(c, base), params, sig) {
			response.Forbidden(c, "invalid signature")
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestURL is the full URL the platform signed.
func requestURL(c *gin.Context, base string) string {
	if base == "" {
		scheme := "http"
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		} else if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + c.Request.URL.RequestURI()
}
