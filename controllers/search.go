package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fixit-api/services"
)

// SearchReports filters reports by keyword and status for the admin
// dashboard, e.g. /admin/reports/search?keyword=gropa&status=pending,in_progress.
func SearchReports(c *gin.Context) {
	keyword := c.Query("keyword")

	var statusList []string
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statusList = append(statusList, s)
			}
		}
	}

	reports, err := services.SearchReportsService(keyword, statusList)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reports)
}
