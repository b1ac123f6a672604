// Client-side alarm scheduling loop of Chime.

package client

import (
	"Chime/internal/entity"
	"Chime/pkg/log"
	"context"
	"sync"
	"time"
)

// Tick period of the evaluation loop. Firing precision is the same
// order as the tick, so coarse polling over the collection is enough.
const tickInterval = time.Second

// Scheduler evaluates the alarm collection once per tick and drives the
// playback capability when an alarm comes due.
type Scheduler struct {
	alarms *AlarmStore
	player Player
	logger log.Logger

	tick time.Duration
	now  func() time.Time

	mu      sync.Mutex
	active  *entity.Alarm
	playing bool
}

func NewScheduler(alarms *AlarmStore, player Player, logger log.Logger) *Scheduler {
	return &Scheduler{
		alarms: alarms,
		player: player,
		logger: logger,
		tick:   tickInterval,
		now:    time.Now,
	}
}

// Run evaluates the alarm collection once per tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evaluate()
		case <-ctx.Done():
			return
		}
	}
}

// evaluate fires any alarm due within one tick of lookahead, so an
// alarm landing between ticks is caught up to one tick early rather
// than missed. When several alarms are due at once, the last one in
// insertion order wins, only a single alarm is active at a time.
func (s *Scheduler) evaluate() {
	deadline := s.now().Add(s.tick)
	var due *entity.Alarm
	for _, alarm := range s.alarms.List() {
		if !alarm.At.After(deadline) {
			a := alarm
			due = &a
		}
	}
	if due == nil {
		return
	}

	s.mu.Lock()
	changed := s.active == nil || s.active.ID != due.ID
	alreadyPlaying := s.playing
	s.active = due
	s.playing = true
	s.mu.Unlock()

	if !changed && alreadyPlaying {
		return
	}
	s.logger.Info().Msgf("Alarm %s (%s) is due, starting playback", due.ID, due.Name)
	if playerr := s.player.Play(due.Sound); playerr != nil {
		// Playback problems never surface to the loop
		s.logger.Error().Err(playerr).Msgf("Couldn't play alarm sound %s", due.Sound)
	}
}

// Active returns the currently firing alarm, if any.
func (s *Scheduler) Active() (entity.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return entity.Alarm{}, false
	}
	return *s.active, true
}

// Playing reports whether alarm playback is currently flagged on.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// StopAlarm clears the active alarm, stops playback and consumes every
// alarm whose target time has already passed.
func (s *Scheduler) StopAlarm() {
	s.mu.Lock()
	s.active = nil
	s.playing = false
	s.mu.Unlock()

	s.player.Stop()
	if removed := s.alarms.RemoveExpired(s.now()); removed > 0 {
		s.logger.Info().Msgf("Removed %d fired alarm(s)", removed)
	}
}
