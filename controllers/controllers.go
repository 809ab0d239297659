package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fixit-api/services"
)

var (
	relay         *services.Relay
	statusService *services.StatusService
	geocoder      *services.Geocoder
	logger        zerolog.Logger
)

// Init wires the shared services into the handlers.
func Init(r *services.Relay, s *services.StatusService, g *services.Geocoder, log zerolog.Logger) {
	relay = r
	statusService = s
	geocoder = g
	logger = log
}

// sessionFrom rebuilds the explicit session from the auth claims the
// middleware stored on the context.
func sessionFrom(c *gin.Context) services.Session {
	return services.Session{
		UID:   c.GetString("user_id"),
		Email: c.GetString("email"),
		Role:  c.GetString("role"),
	}
}
