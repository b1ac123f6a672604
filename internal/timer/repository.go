// timer repository encapsulates the data access logic (interactions with the DB) related to the timer cache in Chime.

package timer

import (
	"Chime/internal/entity"
	"Chime/internal/errors"
	"Chime/pkg/db"
	"Chime/pkg/log"
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// Hash of recently announced timer records, id -> JSON.
var timersDbKey string = "chime:timers"

// The cache is a short-lived convenience mirror for late-joining
// clients, not durable storage. Records expire together.
const timerCacheTTL = 600 * time.Second

type Repository interface {
	// SetTimer records a freshly announced timer in the cache.
	SetTimer(ctx context.Context, logger log.Logger, timer entity.Timer) error
	// GetTimers returns every timer record still inside the cache window.
	GetTimers(ctx context.Context, logger log.Logger) ([]entity.Timer, error)
	// RemoveTimer removes a timer record by id, errors.NotFound when absent.
	RemoveTimer(ctx context.Context, logger log.Logger, id string) error
}

// repository struct of timer Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of timer repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

func (r repository) SetTimer(ctx context.Context, logger log.Logger, timer entity.Timer) error {
	raw, jsonerr := json.Marshal(timer)
	if jsonerr != nil {
		logger.WithCtx(ctx).Error().Err(jsonerr).Msg("Error occured during marshalling timer in timer.SetTimer")
		return errors.InternalServerError("")
	}
	_, dberr := r.db.Client().TxPipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, timersDbKey, timer.ID, raw)
		client.Expire(ctx, timersDbKey, timerCacheTTL)
		return nil
	})
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of HSet in timer.SetTimer")
		return errors.InternalServerError("")
	}
	return nil
}

func (r repository) GetTimers(ctx context.Context, logger log.Logger) ([]entity.Timer, error) {
	vals, dberr := r.db.Client().HVals(ctx, timersDbKey).Result()
	if dberr != nil && dberr != redis.Nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of HVals in timer.GetTimers")
		return nil, errors.InternalServerError("")
	}
	timers := []entity.Timer{}
	for _, val := range vals {
		var timer entity.Timer
		if jsonerr := json.Unmarshal([]byte(val), &timer); jsonerr != nil {
			// Skip the one corrupt record, keep serving the rest
			logger.WithCtx(ctx).Error().Err(jsonerr).Msg("Skipping corrupt timer record in timer.GetTimers")
			continue
		}
		timers = append(timers, timer)
	}
	return timers, nil
}

func (r repository) RemoveTimer(ctx context.Context, logger log.Logger, id string) error {
	removed, dberr := r.db.Client().HDel(ctx, timersDbKey, id).Result()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of HDel in timer.RemoveTimer")
		return errors.InternalServerError("")
	}
	if removed == 0 {
		return errors.NotFound("No active timer")
	}
	return nil
}
