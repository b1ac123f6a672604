// The main file of the Chime client daemon.
// Subscribes to the server's event stream, tracks local alarms and
// fires playback when a scheduled time arrives.

package main

import (
	"Chime/internal/client"
	"Chime/internal/config"
	"Chime/pkg/cleanup"
	"Chime/pkg/log"
	"context"
	"fmt"
	"os"
	"time"
)

var (
	// Indicates the current version of the Chime client.
	Version = "1.0.0"
)

func main() {
	if len(os.Getenv("ENV")) == 0 {
		// Local run, fall back to the dev env file
		os.Setenv("ENV", "DEV")
		config.LoadDevConfig()
	}

	logger := log.New(Version)
	logger.Info().Msg(fmt.Sprintf("Welcome to the Chime client: v%s", Version))

	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8081"
	}

	alarms := client.NewAlarmStore()

	// Named sounds are played through the configured player command,
	// anything that fails falls back to the built-in tone.
	player := client.NewFallbackPlayer(
		client.NewCommandPlayer(os.Getenv("PLAYER_CMD"), os.Getenv("SOUND_DIR")),
		client.NewTonePlayer(os.Stdout),
		logger,
	)

	consumer := client.NewConsumer(serverURL+"/api/events", alarms, logger)
	consumer.OnStatusChange(func(status client.ConnStatus) {
		logger.Info().Msgf("Connection status: %s", status)
	})
	scheduler := client.NewScheduler(alarms, player, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go consumer.Run(ctx)
	go scheduler.Run(ctx)

	// Enter on the terminal stops a ringing alarm
	logger.Info().Msg("Press Enter to stop a ringing alarm")
	go client.RunStopControl(ctx, os.Stdin, scheduler, logger)

	// Graceful shutdown of the client triggered due to system interruptions.
	wait := cleanup.GracefulShutdown(ctx, logger, 5*time.Second, map[string]cleanup.Operation{
		"Event-stream consumer": func(ctx context.Context) error {
			cancel()
			return nil
		},
		"Alarm playback": func(ctx context.Context) error {
			player.Stop()
			return nil
		},
	})
	<-wait
}
