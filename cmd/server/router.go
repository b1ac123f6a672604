// List of all REST API endpoints being used by Chime can be found here.

package main

import (
	"Chime/internal/sound"
	"Chime/internal/sse"
	"Chime/internal/timer"
	"Chime/pkg/db"
	"Chime/pkg/log"
	"Chime/pkg/validations"
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// Router wires every repository, service and API handler group onto the
// gin server. Returns the stream service so main can close the open
// streams during shutdown.
func Router(router *gin.Engine, dbConnWrp *db.RedisDB, logger log.Logger) sse.Service {
	// This is the route to default path
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to Chime!")
	})

	// Custom validation tags used by the request models below
	validations.RegisterCustomValidations(context.Background(), logger)

	// Event stream: connection registry, broadcaster and presence tracking
	sseRepo := sse.NewRepository(dbConnWrp)
	streamService := sse.NewService(sseRepo, logger, time.Second)
	sse.APIHandlers(router, streamService, sse.StreamConnManagerMiddleware(streamService, logger), logger)

	// Timer submission, query and stop
	timerRepo := timer.NewRepository(dbConnWrp)
	timerService := timer.NewService(timerRepo, streamService, logger)
	timer.APIHandlers(router, timerService, logger)

	// Alarm sound catalog
	soundDir := os.Getenv("SOUND_DIR")
	soundService := sound.NewService(soundDir, logger)
	sound.APIHandlers(router, soundService, soundDir, logger)

	return streamService
}
