// Exposes all of the REST APIs related to SSE in Chime.

package sse

import (
	"Chime/internal/entity"
	"Chime/internal/errors"
	"Chime/pkg/log"
	"Chime/pkg/middlewares"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package sse onto the gin server.
func APIHandlers(router *gin.Engine, service Service, connManager gin.HandlerFunc, logger log.Logger) {
	streamGroup := router.Group("/api/events")
	{
		streamGroup.GET("", middlewares.SSEMiddleware(), connManager, streamhandler(service, logger))
		streamGroup.GET("/stats", statshandler(service, logger))
	}
}

// streamhandler keeps the long-lived stream open, writing every event
// queued for this connection in the SSE wire format until the client
// disconnects or the connection is closed server-side.
func streamhandler(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		v, ok := gctx.Get("Conn")
		if !ok {
			gctx.Status(http.StatusInternalServerError)
			return
		}
		conn, ok := v.(*entity.Connection)
		if !ok {
			gctx.Status(http.StatusInternalServerError)
			return
		}
		gctx.Stream(func(w io.Writer) bool {
			select {
			// Send event to the client
			case event, open := <-conn.Channel:
				if !open {
					return false
				}
				if wrerr := writeFrame(w, event); wrerr != nil {
					// Dead transport, cleanup happens via the unregister path
					logger.WithCtx(gctx).Error().Err(wrerr).Msgf("Couldn't write frame to connection %s", conn.ID)
					return false
				}
				return true
			// Client exit
			case <-gctx.Request.Context().Done():
				return false
			}
		})
	}
}

// writeFrame serializes one event in the wire format: "data: <JSON>\n\n".
func writeFrame(w io.Writer, event entity.Event) error {
	raw, jsonerr := json.Marshal(event)
	if jsonerr != nil {
		return jsonerr
	}
	frame := make([]byte, 0, len(raw)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, raw...)
	frame = append(frame, '\n', '\n')
	_, wrerr := w.Write(frame)
	return wrerr
}

// statshandler reports how many stream clients are currently connected.
func statshandler(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		clients, err := service.Stats(gctx)
		if err != nil {
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
			"clients": clients,
		})
	}
}
