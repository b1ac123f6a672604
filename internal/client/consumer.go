// Client stream consumer of Chime.
// Keeps a reconnecting subscription to the server's event stream and
// folds received timers into the local alarm collection.

package client

import (
	"Chime/internal/entity"
	"Chime/pkg/log"
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ConnStatus is the client-observed state of the stream subscription.
type ConnStatus string

const (
	StatusConnecting   ConnStatus = "connecting"
	StatusConnected    ConnStatus = "connected"
	StatusDisconnected ConnStatus = "disconnected"
)

const (
	// Delay before a reconnect attempt after the stream drops.
	reconnectDelay = 5 * time.Second
	// The stream must reach connected within this window of entering
	// connecting, else the attempt is force-closed and retried at once.
	watchdogTimeout = 5 * time.Second

	// Sound applied to alarms derived from broadcasts that carry none.
	defaultAlarmSound = "NickPowerHouse.mp3"
)

// Consumer owns the subscription lifecycle: connect, parse, fold into
// the alarm store, reconnect on failure. One Consumer per client view.
type Consumer struct {
	url    string
	client *http.Client
	alarms *AlarmStore
	logger log.Logger

	retryDelay time.Duration
	watchdog   time.Duration

	mu       sync.Mutex
	status   ConnStatus
	onStatus func(ConnStatus)
}

func NewConsumer(url string, alarms *AlarmStore, logger log.Logger) *Consumer {
	return &Consumer{
		url:        url,
		client:     &http.Client{},
		alarms:     alarms,
		logger:     logger,
		retryDelay: reconnectDelay,
		watchdog:   watchdogTimeout,
		status:     StatusConnecting,
	}
}

// OnStatusChange registers a hook observing every status transition.
func (c *Consumer) OnStatusChange(hook func(ConnStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = hook
}

// Status returns the current connection status.
func (c *Consumer) Status() ConnStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Consumer) setStatus(status ConnStatus) {
	c.mu.Lock()
	changed := c.status != status
	c.status = status
	hook := c.onStatus
	c.mu.Unlock()
	if changed && hook != nil {
		hook(status)
	}
}

// Run keeps the subscription alive until ctx is cancelled. Failures are
// retried at a fixed pace, never a tight loop, except when the watchdog
// trips, which retries immediately.
func (c *Consumer) Run(ctx context.Context) {
	for {
		c.setStatus(StatusConnecting)
		tripped, strmerr := c.stream(ctx)
		c.setStatus(StatusDisconnected)
		if ctx.Err() != nil {
			return
		}
		if strmerr != nil {
			c.logger.Warn().Err(strmerr).Msg("Event stream dropped")
		}
		if tripped {
			c.logger.Warn().Msg("Stream watchdog tripped, retrying immediately")
			continue
		}
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return
		}
	}
}

// stream performs one subscription attempt and consumes it until it
// ends. Reports whether the watchdog force-closed the attempt.
func (c *Consumer) stream(ctx context.Context) (bool, error) {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tripped atomic.Bool
	wd := time.AfterFunc(c.watchdog, func() {
		tripped.Store(true)
		cancel()
	})
	defer wd.Stop()

	req, reqerr := http.NewRequestWithContext(sctx, http.MethodGet, c.url, nil)
	if reqerr != nil {
		return false, reqerr
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, strmerr := c.client.Do(req)
	if strmerr != nil {
		return tripped.Load(), strmerr
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return tripped.Load(), fmt.Errorf("unexpected stream status %d", resp.StatusCode)
	}

	// Stream is open
	wd.Stop()
	c.setStatus(StatusConnected)
	c.logger.Info().Msg("Connected to Chime event stream")

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		c.handleMessage(strings.TrimPrefix(line, "data: "))
	}
	// The watchdog may have force-closed the attempt between the
	// connect and wd.Stop, the immediate retry applies there too
	return tripped.Load(), scanner.Err()
}

// handleMessage parses one wire frame. A malformed payload fails just
// that message, the stream stays open.
func (c *Consumer) handleMessage(raw string) {
	var event entity.Event
	if jsonerr := json.Unmarshal([]byte(raw), &event); jsonerr != nil {
		c.logger.Warn().Err(jsonerr).Msg("Discarding malformed event payload")
		return
	}
	switch event.Type() {
	case entity.EventWelcome:
		message, _ := event["message"].(string)
		c.logger.Info().Msgf("Server says: %s", message)
	case entity.EventNewTimer:
		c.addTimerAlarm(event)
	default:
		c.logger.Debug().Msgf("Ignoring event of type %q", event.Type())
	}
}

// addTimerAlarm folds a broadcast timer into the local alarm collection.
func (c *Consumer) addTimerAlarm(event entity.Event) {
	timer, ok := event["timer"].(map[string]interface{})
	if !ok {
		c.logger.Warn().Msg("Discarding new timer event without a timer record")
		return
	}
	id, _ := timer["id"].(string)
	// JSON numbers decode as float64
	endTime, _ := timer["endTime"].(float64)
	if id == "" || endTime <= 0 {
		c.logger.Warn().Msg("Discarding new timer event with missing id or end time")
		return
	}
	name, _ := timer["name"].(string)
	sound, _ := timer["sound"].(string)
	if sound == "" {
		sound = defaultAlarmSound
	}
	c.alarms.Add(entity.Alarm{
		ID:    id,
		Name:  name,
		At:    time.UnixMilli(int64(endTime)),
		Sound: sound,
	})
	c.logger.Info().Msgf("Scheduled alarm %s from broadcast timer", id)
}
