// Client-side alarm collection in Chime.

package client

import (
	"Chime/internal/entity"
	"sync"
	"time"

	"github.com/rs/xid"
)

// AlarmStore is the ordered collection of scheduled alarms, keyed by id.
// Insertion order governs display and evaluation order. This process's
// memory is the only source of truth for it.
type AlarmStore struct {
	mu    sync.Mutex
	order []string
	byID  map[string]entity.Alarm
}

func NewAlarmStore() *AlarmStore {
	return &AlarmStore{byID: make(map[string]entity.Alarm)}
}

// Add schedules an alarm. Re-adding an existing id overwrites the
// record but keeps its place in the ordering.
func (s *AlarmStore) Add(alarm entity.Alarm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[alarm.ID]; !ok {
		s.order = append(s.order, alarm.ID)
	}
	s.byID[alarm.ID] = alarm
}

// Remove deletes an alarm by id, reporting whether it existed.
func (s *AlarmStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

func (s *AlarmStore) removeLocked(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Edit replaces an alarm with a new record under a fresh id, appended at
// the end of the ordering. Alarms are never mutated in place.
func (s *AlarmStore) Edit(id string, alarm entity.Alarm) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.removeLocked(id) {
		return false
	}
	if alarm.ID == "" || alarm.ID == id {
		alarm.ID = xid.New().String()
	}
	s.order = append(s.order, alarm.ID)
	s.byID[alarm.ID] = alarm
	return true
}

// List returns a copy of the alarms in insertion order.
func (s *AlarmStore) List() []entity.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	alarms := make([]entity.Alarm, 0, len(s.order))
	for _, id := range s.order {
		alarms = append(alarms, s.byID[id])
	}
	return alarms
}

// Len returns the number of scheduled alarms.
func (s *AlarmStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// RemoveExpired drops every alarm whose target time is at or before
// now, returning how many were removed. Firing is consumed by removal,
// there is no persisted fired flag.
func (s *AlarmStore) RemoveExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	remaining := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if !s.byID[id].At.After(now) {
			delete(s.byID, id)
			removed++
			continue
		}
		remaining = append(remaining, id)
	}
	s.order = remaining
	return removed
}
