// The main file of the Chime server.

package main

import (
	"Chime/internal/config"
	"Chime/pkg/cleanup"
	"Chime/pkg/db"
	"Chime/pkg/log"
	"Chime/pkg/middlewares"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	// Indicates the current version of Chime.
	Version = "1.0.0"
	// Address and Port to be used by gin.
	srvaddr, srvport string
)

func main() {
	if len(os.Getenv("ENV")) == 0 {
		// Local run, fall back to the dev env file
		os.Setenv("ENV", "DEV")
		config.LoadDevConfig()
	}

	logger := log.New(Version)
	logger.Info().Msg(fmt.Sprintf("Welcome to Chime: v%s", Version))
	logger.Info().Msg(fmt.Sprintf("Chime Environment: %s", os.Getenv("ENV")))

	ctx := context.Background()

	// Connecting and pinging the DB for connection status check.
	dbConnWrp := db.NewDbConnection(ctx, logger)
	dbConnWrp.CheckDbConnection(ctx, logger)

	// Fetching addr and port depending upon env flag.
	srvaddr, srvport = os.Getenv("SRV_ADDR"), os.Getenv("SRV_PORT")
	// This is the preferred mode used by gin server in DEV environment.
	if os.Getenv("ENV") == "DEV" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initializing the gin server.
	server := gin.New()

	// Forcing gin to use custom Logger instead of the default one.
	server.Use(log.LoggerGinExtension(logger))
	server.Use(gin.Recovery())
	server.Use(middlewares.CORSMiddleware("*"))
	server.Use(middlewares.UniqueIDMiddleware(logger))

	// Running Router() which routes all of the REST API groups and paths.
	streamService := Router(server, dbConnWrp, logger)

	// Running the server with defined addr and port.
	srv := &http.Server{
		Addr:    srvaddr + ":" + srvport,
		Handler: server,
	}

	// ListenAndServe is a blocking operation, putting it a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Chime server couldn't start")
		}
	}()

	// Graceful shutdown of Chime server triggered due to system interruptions.
	wait := cleanup.GracefulShutdown(ctx, logger, 5*time.Second, map[string]cleanup.Operation{
		"Event-streams": func(ctx context.Context) error {
			return streamService.Close(ctx)
		},
		"Redis-server": func(ctx context.Context) error {
			return dbConnWrp.CloseDbConnection(ctx)
		},
		"Gin": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	<-wait
}
