package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-natex/model"
)

// analyticsProvider is implemented by engines that record pattern operations.
type analyticsProvider interface {
	AnalyticsDashboard() model.AnalyticsDashboard
}

// GetAnalyticsHandler returns the analytics dashboard data
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	provider, ok := api.engine.(analyticsProvider)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Analytics not supported by this engine")
		return
	}

	c.JSON(http.StatusOK, provider.AnalyticsDashboard())
}
