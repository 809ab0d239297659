package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"fixit-api/models"
)

func GetProfile(c *gin.Context) {
	user, err := models.FindUserByID(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile edits names and email; the profile image arrives as
// multipart and goes to the photo bucket.
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	firstName := strings.TrimSpace(c.PostForm("firstName"))
	lastName := strings.TrimSpace(c.PostForm("lastName"))
	email := strings.TrimSpace(c.PostForm("email"))

	if firstName == "" || lastName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Emri dhe mbiemri janë të detyrueshëm."})
		return
	}
	if !emailRegex.MatchString(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email nuk është në format të saktë."})
		return
	}

	fields := bson.M{
		"firstName": firstName,
		"lastName":  lastName,
		"email":     strings.ToLower(email),
	}

	file, header, err := c.Request.FormFile("profile_image")
	if err == nil {
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}

		imageURL, err := UploadImageToGCS(file, contentType, "profile")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to upload image: %v", err)})
			return
		}
		fields["profileImageUrl"] = imageURL
	}

	if err := models.UpdateUserFields(userID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gabim gjatë ruajtjes së profilit. Ju lutem provoni përsëri."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Update Successful"})
}

// GetProfileStats feeds the stat cards: totals per lifecycle bucket.
func GetProfileStats(c *gin.Context) {
	sess := sessionFrom(c)

	counts, err := models.CountReportsByStatus(sess.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// UpdateNotificationSettings stores the push opt-in and device token.
func UpdateNotificationSettings(c *gin.Context) {
	type SettingsInput struct {
		Enabled   *bool  `json:"enabled" binding:"required"`
		PushToken string `json:"pushToken"`
	}

	var input SettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	fields := bson.M{"notificationsEnabled": *input.Enabled}
	if input.PushToken != "" {
		fields["pushToken"] = input.PushToken
	}

	if err := models.UpdateUserFields(c.GetString("user_id"), fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}
