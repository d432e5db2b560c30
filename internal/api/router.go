package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes registers all endpoints. The shared-view lookup stays outside
// the auth group: holding a code is the whole grant.
func Routes(r *gin.Engine, app App, authMiddleware gin.HandlerFunc) {
	r.Use(RequestIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/shared/:code", GetSharedView(app))

	protected := r.Group("/api")
	protected.Use(authMiddleware)
	{
		protected.POST("/sessions", PostSession(app))
		protected.GET("/sessions", GetSessions(app))
		protected.GET("/dashboard", GetDashboard(app))
		protected.GET("/dashboard/live", LiveDashboard(app))
		protected.GET("/share/code", GetShareCode(app))
		protected.PUT("/profile", PutProfile(app))
	}
}
