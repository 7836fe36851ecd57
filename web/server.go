package web

import (
	"net/http"

	"axiapac.com/attendance/web/middlewares"
	"github.com/gin-gonic/gin"
)

const APIBase = "/api/attendance/v1.0"

// NewRouter builds the gin engine with /ping, CORS and the API group. The
// API group requires a bearer token when jwtSecret is non-empty. register
// mounts the feature routes on that group.
func NewRouter(jwtSecret []byte, register func(api *gin.RouterGroup)) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.Cors())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := r.Group(APIBase)
	if len(jwtSecret) > 0 {
		api.Use(middlewares.Authentication(jwtSecret))
	}
	register(api)

	return r
}
