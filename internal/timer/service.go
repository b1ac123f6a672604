// Service layer of the internal package timer.

package timer

import (
	"Chime/internal/entity"
	"Chime/internal/errors"
	"Chime/internal/sse"
	"Chime/pkg/log"
	"context"
	"time"

	"github.com/rs/xid"
)

// Defaults carried on a timer record for client convenience.
const (
	defaultTimerName = "Timer"
	defaultSound     = "NickPowerHouse.mp3"
)

// Service layer of internal package timer which encapsulates the timer logic of Chime.
type Service interface {
	// settimer validates the request, builds a fresh timer record and
	// announces it to every connected stream client.
	settimer(ctx context.Context, request entity.SetTimerRequest) (entity.Timer, error)
	// gettimers returns the timer records still inside the cache window.
	gettimers(ctx context.Context) ([]entity.Timer, error)
	// stoptimer removes a timer record by id.
	stoptimer(ctx context.Context, id string) error
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	timerRepo   Repository
	broadcaster sse.Service
	logger      log.Logger
}

func NewService(timerRepo Repository, broadcaster sse.Service, logger log.Logger) Service {
	return service{timerRepo, broadcaster, logger}
}

func (s service) settimer(ctx context.Context, request entity.SetTimerRequest) (entity.Timer, error) {
	valerr := validateTimerRequest(ctx, s.logger, request)
	if valerr != nil {
		// No state change and no broadcast on invalid input
		return entity.Timer{}, valerr
	}

	if request.Name == "" {
		request.Name = defaultTimerName
	}
	if request.Sound == "" {
		request.Sound = defaultSound
	}
	timer := entity.Timer{
		ID:       xid.New().String(),
		Name:     request.Name,
		Duration: request.Duration,
		EndTime:  time.Now().UnixMilli() + int64(request.Duration*1000),
		Sound:    request.Sound,
		Active:   true,
	}

	dberr := s.timerRepo.SetTimer(ctx, s.logger, timer)
	if dberr != nil {
		// Error occured in SetTimer()
		return entity.Timer{}, errors.InternalServerError("Failed to set timer")
	}

	s.broadcaster.Broadcast(ctx, entity.Event{
		"type":  entity.EventNewTimer,
		"timer": timer,
	})
	s.logger.WithCtx(ctx).Info().Msgf("Broadcasted new timer %s ending at %d", timer.ID, timer.EndTime)

	return timer, nil
}

func (s service) gettimers(ctx context.Context) ([]entity.Timer, error) {
	return s.timerRepo.GetTimers(ctx, s.logger)
}

func (s service) stoptimer(ctx context.Context, id string) error {
	return s.timerRepo.RemoveTimer(ctx, s.logger, id)
}
