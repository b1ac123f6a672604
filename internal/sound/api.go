// Exposes all of the REST APIs related to the Sound catalog in Chime.

package sound

import (
	"Chime/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package sound onto the gin server.
// dir, when non-empty, is additionally served raw for client playback.
func APIHandlers(router *gin.Engine, service Service, dir string, logger log.Logger) {
	soundgroup := router.Group("/api/sounds")
	{
		soundgroup.GET("", getSounds(service, logger))
	}
	if dir != "" {
		router.Static("/sounds", dir)
	}
}

// getSounds returns a handler which lists the selectable alarm sounds.
func getSounds(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{
			"sounds": service.getsounds(gctx),
		})
	}
}
