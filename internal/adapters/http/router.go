// Package http wires the gin surface: the authenticated signal endpoint,
// the ops query API and the metrics scrape.
package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hward/huddle/internal/adapters/signal"
	"github.com/hward/huddle/internal/app"
	"github.com/hward/huddle/internal/auth"
	"github.com/hward/huddle/internal/config"
	"github.com/hward/huddle/internal/domain"
	"github.com/hward/huddle/internal/metrics"
	"github.com/hward/huddle/internal/store"
)

// AuthMiddleware verifies the bearer credential on the handshake. Browsers
// cannot set headers on a websocket upgrade, so a token query parameter is
// accepted too. Missing or invalid credentials refuse the connection.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		ident, err := verifier.Verify(token)
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("handshake auth refused")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("identity", ident)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator, state store.StateStore, verifier *auth.Verifier) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	ctrl := signal.NewController(coord, cfg)
	api.GET("/ws/signal", AuthMiddleware(verifier), func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.Stats())
	})
	api.GET("/connections", func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.Connections())
	})
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.Rooms())
	})
	// The mirror, not the local index: in a cluster this is the only
	// roster that spans instances.
	api.GET("/rooms/:roomId/participants", func(c *gin.Context) {
		users, err := state.RoomMembers(c.Request.Context(), domain.RoomID(c.Param("roomId")))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "state store unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomId": c.Param("roomId"), "participants": users})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
