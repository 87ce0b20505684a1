package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardSummary backs the four cards at the top of the dashboard.
func (s *Server) DashboardSummary(c *gin.Context) {
	summary, err := s.invoiceSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	display := s.display.Get()
	c.JSON(http.StatusOK, gin.H{
		"data": summary,
		"display": gin.H{
			"currency": display.Currency,
			"locale":   display.Locale,
		},
	})
}
