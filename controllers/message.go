package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fixit-api/models"
	"fixit-api/utils"
)

// CreateMessage stores a contact-form submission and forwards a copy
// to the support inbox.
func CreateMessage(c *gin.Context) {
	var message models.Message
	if err := c.ShouldBindJSON(&message); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := models.CreateMessage(message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The message is saved; losing the email copy is acceptable.
	go func(m models.Message) {
		if err := utils.SendContactEmail(m.Name, m.LastName, m.Email, m.Message); err != nil {
			logger.Warn().Err(err).Msg("failed to forward contact message")
		}
	}(*created)

	c.JSON(http.StatusCreated, gin.H{"message": "Mesazhi juaj u dërgua me sukses!"})
}

// GetMessages lists contact submissions for the admin.
func GetMessages(c *gin.Context) {
	messages, err := models.GetAllMessages()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}
