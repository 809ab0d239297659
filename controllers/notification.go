package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fixit-api/models"
)

// GetMyNotifications lists the session user's notifications, newest
// first, for the notifications screen.
func GetMyNotifications(c *gin.Context) {
	sess := sessionFrom(c)

	notifications, err := models.GetNotificationsByEmail(sess.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead acknowledges one notification. Idempotent.
func MarkNotificationRead(c *gin.Context) {
	if err := relay.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// DeliverPendingNotifications lets a client trigger delivery for its
// own session explicitly, e.g. after granting device permission.
func DeliverPendingNotifications(c *gin.Context) {
	sess := sessionFrom(c)

	sent, err := relay.DeliverPending(c.Request.Context(), sess.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deliver notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
