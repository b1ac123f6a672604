// sse repository encapsulates the data access logic (interactions with the DB) related to stream presence in Chime.

package sse

import (
	"Chime/internal/errors"
	"Chime/pkg/db"
	"Chime/pkg/log"
	"context"
)

// Set of currently connected stream client IDs.
var clientsDbKey string = "chime:stream_clients"

type Repository interface {
	// AddClient adds an incoming stream connection ID to the presence set.
	AddClient(ctx context.Context, logger log.Logger, connID string) error
	// RemoveClient removes a disconnected stream connection ID from the presence set.
	RemoveClient(ctx context.Context, logger log.Logger, connID string) error
	// CountClients returns the size of the presence set.
	CountClients(ctx context.Context, logger log.Logger) (int64, error)
}

// repository struct of sse Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of sse repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns nil if the connection ID got successfully added into the DB.
func (r repository) AddClient(ctx context.Context, logger log.Logger, connID string) error {
	dberr := r.db.Client().SAdd(ctx, clientsDbKey, connID).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of SAdd in sse.AddClient")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns nil if the connection ID got successfully removed from the DB.
func (r repository) RemoveClient(ctx context.Context, logger log.Logger, connID string) error {
	dberr := r.db.Client().SRem(ctx, clientsDbKey, connID).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of SRem in sse.RemoveClient")
		return errors.InternalServerError("")
	}
	return nil
}

func (r repository) CountClients(ctx context.Context, logger log.Logger) (int64, error) {
	count, dberr := r.db.Client().SCard(ctx, clientsDbKey).Result()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of SCard in sse.CountClients")
		return 0, errors.InternalServerError("")
	}
	return count, nil
}
