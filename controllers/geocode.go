package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ReverseGeocode proxies the map's address lookup. Failures come back
// as an empty placeName; the client never blocks on this.
func ReverseGeocode(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon"})
		return
	}

	placeName := geocoder.ReverseGeocode(c.Request.Context(), lat, lon)
	c.JSON(http.StatusOK, gin.H{"placeName": placeName})
}
