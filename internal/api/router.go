// internal/api/router.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface. The Inngest handler is mounted separately
// by main, so everything here is the synchronous API.
func NewRouter(h *Handlers, environment string) *gin.Engine {
	if environment != "development" && environment != "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "geo-workflows", "status": "running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	geo := router.Group("/geo")
	{
		geo.POST("/detect", h.Detect)
		geo.POST("/ask-detect", h.AskDetect)
		geo.POST("/ask-detect-batch", h.AskDetectBatch)
		geo.POST("/generate-prompts", h.GeneratePrompts)
	}

	companies := router.Group("/companies")
	{
		companies.POST("", h.CreateCompany)
		companies.GET("/:id", h.GetCompany)
	}

	campaigns := router.Group("/campaigns")
	{
		campaigns.POST("", h.CreateCampaign)
		campaigns.GET("/:id", h.GetCampaign)
		campaigns.POST("/:id/run", h.StartCampaign)
		campaigns.GET("/:id/metrics", h.GetCampaignMetrics)
		campaigns.GET("/:id/export", h.ExportCampaign)
	}

	return router
}
