package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"fixit-api/models"
)

// CreateReport stores a citizen submission. Location, description and
// title are required; the photo is optional. An empty placeName is
// filled by reverse geocoding, best effort.
func CreateReport(c *gin.Context) {
	type ReportInput struct {
		ProblemTitle string   `json:"problemTitle"`
		Description  string   `json:"description"`
		Latitude     *float64 `json:"latitude"`
		Longitude    *float64 `json:"longitude"`
		PlaceName    string   `json:"placeName"`
		PhotoBase64  string   `json:"photoBase64"`
	}

	var input ReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.Latitude == nil || input.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	sess := sessionFrom(c)

	placeName := input.PlaceName
	if placeName == "" {
		placeName = geocoder.ReverseGeocode(c.Request.Context(), *input.Latitude, *input.Longitude)
	}

	report := models.Report{
		ProblemTitle: input.ProblemTitle,
		Description:  input.Description,
		Latitude:     *input.Latitude,
		Longitude:    *input.Longitude,
		PlaceName:    placeName,
		UserEmail:    sess.Email,
	}

	// Prefer a bucket URL; fall back to the inline payload when
	// storage is down so a submission never fails on its photo.
	if url := uploadReportPhoto(input.PhotoBase64); url != "" {
		report.PhotoURL = url
	} else {
		report.PhotoBase64 = input.PhotoBase64
	}

	created, err := models.CreateReport(report)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetMyReports lists the session user's reports, newest first.
func GetMyReports(c *gin.Context) {
	sess := sessionFrom(c)

	reports, err := models.GetReportsByEmail(sess.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nuk u lexuan raportet."})
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetAllReports is the admin dashboard list.
func GetAllReports(c *gin.Context) {
	reports, err := models.GetAllReports()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func GetReportByID(c *gin.Context) {
	id := c.Param("id")
	report, err := models.GetReportByID(id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteReport removes a report. Owners may delete their own, admins
// any.
func DeleteReport(c *gin.Context) {
	id := c.Param("id")
	sess := sessionFrom(c)

	report, err := models.GetReportByID(id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !sess.IsAdmin() && report.UserEmail != sess.Email {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your report"})
		return
	}

	if err := models.DeleteReport(id); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}
