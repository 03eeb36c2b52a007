package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-natex/internal/annotator"
	"github.com/gcbaptista/go-natex/services"
)

// API holds dependencies for API handlers, primarily the sentence engine.
type API struct {
	engine services.SentenceManager
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.SentenceManager) *API {
	return &API{engine: engine}
}

// SetupRoutes defines all the API routes of the NatEx service.
func SetupRoutes(router *gin.Engine, engine services.SentenceManager) {
	apiHandler := NewAPI(engine)

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)              // List jobs, optionally by status
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler) // Get job performance metrics
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)         // Get job status by ID
		jobRoutes.DELETE("/:jobId", apiHandler.CancelJobHandler)   // Cancel a pending or running job
	}

	// Sentence routes
	sentenceRoutes := router.Group("/sentences")
	{
		sentenceRoutes.POST("", apiHandler.AddSentenceHandler)              // Annotate and store a sentence
		sentenceRoutes.GET("", apiHandler.ListSentencesHandler)             // List sentences with pagination
		sentenceRoutes.POST("/_bulk", apiHandler.BulkAddSentencesHandler)   // Annotate many sentences in a job
		sentenceRoutes.POST("/_import", apiHandler.ImportConlluHandler)     // Import a CoNLL-U document in a job
		sentenceRoutes.POST("/_search", apiHandler.SearchCorpusHandler)     // Run a pattern over the corpus
		sentenceRoutes.GET("/:id", apiHandler.GetSentenceHandler)           // Get a stored sentence
		sentenceRoutes.DELETE("/:id", apiHandler.DeleteSentenceHandler)     // Delete a stored sentence
		sentenceRoutes.POST("/:id/:operation", apiHandler.OperationHandler) // _match, _search, _findall, _sub, _split
	}

	// Pattern routes
	router.POST("/patterns/_compile", apiHandler.CompilePatternHandler)

	// Tag index and analytics routes
	router.GET("/tags", apiHandler.TagCountsHandler)
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)
}

// HealthCheckHandler reports the service status and the readiness of every
// registered annotator. The service is degraded when an annotator is down.
func (api *API) HealthCheckHandler(c *gin.Context) {
	annotators := api.engine.Annotators(c.Request.Context())

	status := "healthy"
	for _, state := range annotators {
		if state != annotator.StatusReady {
			status = "degraded"
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"service":    "go-natex",
		"annotators": annotators,
		"timestamp":  fmt.Sprintf("%d", time.Now().Unix()),
	})
}
