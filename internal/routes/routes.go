package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillcms/quill-backend/internal/handler"
	"github.com/quillcms/quill-backend/internal/middleware"
	"github.com/quillcms/quill-backend/pkg/jwt"
)

// Register wires the revision API under /api/v1
func Register(r *gin.Engine, revisions *handler.RevisionHandler, jwtManager *jwt.Manager) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtManager))

	entity := api.Group("/:entityType/:id")
	{
		entity.POST("/revisions", revisions.CreateRevision)
		entity.GET("/revisions", revisions.ListRevisions)
		entity.GET("/revisions/stats", revisions.RevisionStats)
		entity.GET("/revisions/compare", revisions.CompareRevisions)
		entity.POST("/revisions/:revisionId/restore", revisions.RestoreRevision)
		entity.POST("/autosave", revisions.AutoSave)
	}
}
