package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-natex/internal/engine"
	internalErrors "github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/services"
)

var jobStatuses = map[model.JobStatus]bool{
	model.JobStatusPending:   true,
	model.JobStatusRunning:   true,
	model.JobStatusCompleted: true,
	model.JobStatusFailed:    true,
	model.JobStatusCancelled: true,
}

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	if jobManager, ok := api.engine.(services.JobManager); ok {
		job, err := jobManager.GetJob(jobID)
		if err != nil {
			SendJobNotFoundError(c, jobID)
			return
		}

		c.JSON(http.StatusOK, job)
	} else {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Job management not supported by this engine")
	}
}

// ListJobsHandler handles requests to list jobs
// Query Parameters: status (pending, running, completed, failed or cancelled)
func (api *API) ListJobsHandler(c *gin.Context) {
	statusParam := c.Query("status")

	var statusFilter *model.JobStatus
	if statusParam != "" {
		status := model.JobStatus(statusParam)
		if !jobStatuses[status] {
			result := &ValidationResult{Valid: true}
			result.AddError("status", "Unknown job status '"+statusParam+"'")
			SendValidationError(c, result)
			return
		}
		statusFilter = &status
	}

	if jobManager, ok := api.engine.(services.JobManager); ok {
		jobs := jobManager.ListJobs(statusFilter)
		c.JSON(http.StatusOK, gin.H{
			"jobs":  jobs,
			"total": len(jobs),
		})
	} else {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Job management not supported by this engine")
	}
}

// CancelJobHandler cancels a pending or running job
func (api *API) CancelJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Job management not supported by this engine")
		return
	}

	if err := jobManager.CancelJob(jobID); err != nil {
		if errors.Is(err, internalErrors.ErrJobNotFound) {
			SendJobNotFoundError(c, jobID)
			return
		}
		SendError(c, http.StatusConflict, ErrorCodeInvalidRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job '" + jobID + "' cancelled"})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	if engineWithMetrics, ok := api.engine.(*engine.Engine); ok {
		// Get metrics (already returns a copy without mutex)
		metrics := engineWithMetrics.GetJobMetrics()

		cacheSize, cacheHits, cacheMisses := engineWithMetrics.PatternCacheStats()

		// Add computed metrics
		response := gin.H{
			"metrics":          metrics,
			"success_rate":     engineWithMetrics.GetJobSuccessRate(),
			"current_workload": engineWithMetrics.GetCurrentWorkload(),
			"pattern_cache": gin.H{
				"size":   cacheSize,
				"hits":   cacheHits,
				"misses": cacheMisses,
			},
		}

		c.JSON(http.StatusOK, response)
	} else {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Job metrics not supported by this engine")
	}
}
