// Exposes all of the REST APIs related to the Timer model in Chime.

package timer

import (
	"Chime/internal/entity"
	"Chime/internal/errors"
	"Chime/pkg/log"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package timer onto the gin server.
func APIHandlers(router *gin.Engine, service Service, logger log.Logger) {
	timergroup := router.Group("/api/timer")
	{
		timergroup.POST("", setTimer(service, logger))
		timergroup.GET("", getTimers(service, logger))
		timergroup.DELETE("/:id", stopTimer(service, logger))
	}
}

// setTimer returns a handler which takes care of creating and announcing a new timer in Chime.
func setTimer(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var request entity.SetTimerRequest
		if binderr := gctx.ShouldBindJSON(&request); binderr != nil {
			logger.WithCtx(gctx).Warn().Err(binderr).Msg("Couldn't bind timer request body")
			gctx.JSON(http.StatusBadRequest, errors.BadRequest("Invalid duration"))
			return
		}

		timer, err := service.settimer(gctx, request)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Timer set for %g seconds", timer.Duration),
			"endTime": timer.EndTime,
		})
	}
}

// getTimers returns a handler which lists the timer records announced inside the cache window.
func getTimers(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		timers, err := service.gettimers(gctx)
		if err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, timers)
	}
}

// stopTimer returns a handler which removes a timer record by id.
func stopTimer(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		err := service.stoptimer(gctx, gctx.Param("id"))
		if err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Timer stopped",
		})
	}
}
