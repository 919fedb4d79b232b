package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poselab/pose-mirror/pkg/session"
)

// SetRouter builds the HTTP trigger and status surface. It exposes the same
// four discrete triggers as the window's key surface, so the system can be
// driven headless.
func SetRouter(s *session.Session) *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/status", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, s.Status())
	})

	apiRoutes.POST("/capture", func(ctx *gin.Context) {
		if !s.StartCapture() {
			//a countdown is already running
			ctx.JSON(http.StatusConflict, gin.H{"counting": true})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"counting": true})
	})

	apiRoutes.POST("/capture/dynamic", func(ctx *gin.Context) {
		s.StartDynamic()
		ctx.JSON(http.StatusNotImplemented, gin.H{"message": "dynamic capture is not available"})
	})

	apiRoutes.POST("/mirror/toggle", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"mirrored": s.ToggleMirror()})
	})

	apiRoutes.POST("/skeleton/toggle", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"skeleton": s.ToggleSkeleton()})
	})

	return r
}
