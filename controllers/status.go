package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fixit-api/models"
	"fixit-api/services"
)

// UpdateReportStatus applies an admin triage decision through the
// transition policy.
func UpdateReportStatus(c *gin.Context) {
	type StatusInput struct {
		Status string `json:"status" binding:"required"`
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	report, err := statusService.SetStatus(c.Request.Context(), sessionFrom(c), c.Param("id"), models.Status(input.Status))
	if err != nil {
		respondStatusError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ToggleFinished is the legacy endpoint behind the old dashboard
// switch; it maps the boolean onto the status enum and goes through
// the same policy path.
func ToggleFinished(c *gin.Context) {
	id := c.Param("id")

	report, err := models.GetReportByID(id)
	if err != nil {
		respondStatusError(c, services.ErrNotFound)
		return
	}

	newStatus := models.StatusCompleted
	if report.Status == models.StatusCompleted {
		newStatus = models.StatusPending
	}

	updated, err := statusService.SetStatus(c.Request.Context(), sessionFrom(c), id, newStatus)
	if err != nil {
		respondStatusError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func respondStatusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	case errors.Is(err, services.ErrBadStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
	case errors.Is(err, services.ErrTransitionNotAllowed):
		c.JSON(http.StatusConflict, gin.H{"error": "Transition not allowed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
