// Service layer of Server Side Events (SSE) in Chime.
// Owns the registry of open stream connections and fans events out to them.

package sse

import (
	"Chime/internal/entity"
	"Chime/pkg/log"
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Events buffered per connection. A connection whose buffer is full has
// frames dropped for it rather than stalling delivery to everyone else.
const connBufferSize = 16

type Service interface {
	// Register adds conn to the registry. No-op if already present.
	Register(ctx context.Context, conn *entity.Connection)
	// Unregister removes conn from the registry and closes its delivery
	// channel. No-op if absent.
	Unregister(ctx context.Context, conn *entity.Connection)
	// Broadcast delivers event to every connection registered at the time
	// of the call. Best-effort, a failing or slow connection never blocks
	// delivery to the rest.
	Broadcast(ctx context.Context, event entity.Event)
	// Stats reports the number of clients currently in the presence set.
	Stats(ctx context.Context) (int64, error)
	// Close unregisters every live connection, used during server shutdown.
	Close(ctx context.Context) error
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
type service struct {
	mu    sync.RWMutex
	conns map[*entity.Connection]struct{}

	sseRepo      Repository
	logger       log.Logger
	welcomeAfter time.Duration
}

// Helps to access the service layer interface and call methods.
// welcomeAfter is the delay before a synthetic welcome event proves
// liveness to a freshly registered connection, <= 0 disables it.
func NewService(sseRepo Repository, logger log.Logger, welcomeAfter time.Duration) Service {
	return &service{
		conns:        make(map[*entity.Connection]struct{}),
		sseRepo:      sseRepo,
		logger:       logger,
		welcomeAfter: welcomeAfter,
	}
}

// NewConnection builds a Connection with a fresh time-ordered ID and its
// delivery buffer.
func NewConnection() *entity.Connection {
	return &entity.Connection{
		ID:      xid.New().String(),
		Channel: make(chan entity.Event, connBufferSize),
	}
}

func (s *service) Register(ctx context.Context, conn *entity.Connection) {
	s.mu.Lock()
	if _, ok := s.conns[conn]; ok {
		s.mu.Unlock()
		return
	}
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	// Presence tracking is best-effort, the stream itself is unaffected
	if dberr := s.sseRepo.AddClient(ctx, s.logger, conn.ID); dberr != nil {
		s.logger.WithCtx(ctx).Error().Err(dberr).Msgf("Couldn't add connection %s to the presence set", conn.ID)
	}
	s.logger.WithCtx(ctx).Info().Msgf("Registered event stream connection %s", conn.ID)

	if s.welcomeAfter > 0 {
		time.AfterFunc(s.welcomeAfter, func() {
			s.send(conn, entity.Event{
				"type":    entity.EventWelcome,
				"message": "Connected to Chime event stream",
			})
		})
	}
}

func (s *service) Unregister(ctx context.Context, conn *entity.Connection) {
	s.mu.Lock()
	if _, ok := s.conns[conn]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.conns, conn)
	// Closed under the write lock so no fan-out can race the close.
	close(conn.Channel)
	s.mu.Unlock()

	if dberr := s.sseRepo.RemoveClient(ctx, s.logger, conn.ID); dberr != nil {
		s.logger.WithCtx(ctx).Error().Err(dberr).Msgf("Couldn't remove connection %s from the presence set", conn.ID)
	}
	s.logger.WithCtx(ctx).Info().Msgf("Unregistered event stream connection %s", conn.ID)
}

func (s *service) Broadcast(ctx context.Context, event entity.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.conns {
		select {
		case conn.Channel <- event:
		default:
			// Slow consumer, drop the frame for this connection only
			s.logger.WithCtx(ctx).Warn().Msgf("Dropped %q event for slow connection %s", event.Type(), conn.ID)
		}
	}
}

// send delivers an event to a single connection if it is still registered.
func (s *service) send(conn *entity.Connection, event entity.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.conns[conn]; !ok {
		return
	}
	select {
	case conn.Channel <- event:
	default:
		s.logger.Warn().Msgf("Dropped %q event for slow connection %s", event.Type(), conn.ID)
	}
}

func (s *service) Stats(ctx context.Context) (int64, error) {
	return s.sseRepo.CountClients(ctx, s.logger)
}

func (s *service) Close(ctx context.Context) error {
	s.mu.Lock()
	closed := make([]string, 0, len(s.conns))
	for conn := range s.conns {
		delete(s.conns, conn)
		close(conn.Channel)
		closed = append(closed, conn.ID)
	}
	s.mu.Unlock()

	for _, connID := range closed {
		if dberr := s.sseRepo.RemoveClient(ctx, s.logger, connID); dberr != nil {
			s.logger.WithCtx(ctx).Error().Err(dberr).Msgf("Couldn't remove connection %s from the presence set", connID)
		}
	}
	s.logger.WithCtx(ctx).Info().Msgf("Closed %d event stream connection(s)", len(closed))
	return nil
}
