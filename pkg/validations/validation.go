// All global custom validations in Chime are defined here.
// These validations are allowed to be used anywhere in the application.

package validations

import (
	"Chime/pkg/log"
	"context"
	"regexp"

	"github.com/asaskevich/govalidator"
)

func RegisterCustomValidations(ctx context.Context, logger log.Logger) {
	// This global validation doesn't allow whitespace in input.
	govalidator.TagMap["nospace"] = govalidator.Validator(func(str string) bool {
		return !govalidator.HasWhitespace(str)
	})
	// Sound selectors must look like a bare filename.
	// Keeps path fragments out of anything a client can echo back to playback.
	govalidator.TagMap["soundfile"] = govalidator.Validator(func(str string) bool {
		pattern := regexp.MustCompile(`^[a-zA-Z0-9 _.-]+$`)
		return pattern.MatchString(str)
	})

	logger.WithCtx(ctx).Info().Msg("Successfully registered global custom validations.")
}
