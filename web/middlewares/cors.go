package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CorsHeaders are sent on every response so browser callers can reach the
// sync endpoints from any origin.
var CorsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// Cors answers preflight requests with 200 "ok" before authentication runs.
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range CorsHeaders {
			c.Header(k, v)
		}
		if c.Request.Method == http.MethodOptions {
			c.String(http.StatusOK, "ok")
			c.Abort()
			return
		}
		c.Next()
	}
}
