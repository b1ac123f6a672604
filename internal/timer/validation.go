// All custom validations related to the timer entity in Chime are defined here.

package timer

import (
	"Chime/internal/entity"
	"Chime/internal/errors"
	"Chime/pkg/log"
	"context"

	"github.com/asaskevich/govalidator"
)

// validateTimerRequest checks duration positivity first, then runs the
// govalidator annotations on the rest of the request.
func validateTimerRequest(ctx context.Context, logger log.Logger, request entity.SetTimerRequest) error {
	// Any positive number of seconds is a valid duration, no upper bound
	if request.Duration <= 0 {
		return errors.BadRequest("Invalid duration")
	}
	_, valerr := govalidator.ValidateStruct(request)
	if valerr == nil {
		return nil
	}
	logger.WithCtx(ctx).Debug().Err(valerr).Msg("Timer request failed validation")

	for _, msg := range govalidator.ErrorsByField(valerr) {
		return errors.BadRequest(msg)
	}
	return errors.BadRequest("Invalid duration")
}
