// Terminal controls of the Chime client daemon.

package client

import (
	"Chime/pkg/log"
	"bufio"
	"context"
	"io"
)

// RunStopControl reads lines from in until ctx is cancelled or the
// input is exhausted. Every line stops the ringing alarm, the daemon's
// stand-in for a stop button.
func RunStopControl(ctx context.Context, in io.Reader, scheduler *Scheduler, logger log.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if !scheduler.Playing() {
			logger.Debug().Msg("No alarm is ringing")
			continue
		}
		scheduler.StopAlarm()
		logger.Info().Msg("Stopped the ringing alarm")
	}
}
