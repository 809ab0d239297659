package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"fixit-api/models"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func generateJWT(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})
	return token.SignedString(jwtSecret)
}

// Login verifies credentials, issues the session token, registers the
// device push token when one is sent along, and kicks pending
// notification delivery for the user — the session-start hook.
func Login(c *gin.Context) {
	type LoginInput struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		PushToken string `json:"pushToken"`
	}

	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ju lutem shkruani email-in dhe fjalëkalimin."})
		return
	}

	user, err := models.FindUserByEmail(input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ose fjalëkalim gabim."})
		return
	}

	if !checkPasswordHash(input.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ose fjalëkalim gabim."})
		return
	}

	token, err := generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	if input.PushToken != "" && input.PushToken != user.PushToken {
		if err := models.UpdateUserFields(user.ID.Hex(), bson.M{"pushToken": input.PushToken}); err != nil {
			logger.Error().Err(err).Str("email", user.Email).Msg("failed to store push token")
		}
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   3600 * 24,
		Secure:   true,
		HttpOnly: false,
		SameSite: http.SameSiteNoneMode,
	})

	// Deliver whatever piled up while the user was away. Off the
	// request path: login must not wait on the push gateway.
	go func(email string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := relay.DeliverPending(ctx, email); err != nil {
			logger.Error().Err(err).Str("email", email).Msg("login-time delivery failed")
		}
	}(user.Email)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"role":    user.Role,
	})
}
