// Server Side Events (SSE) middleware used to tie a stream request's lifecycle to the connection registry.

package sse

import (
	"Chime/pkg/log"
	"context"

	"github.com/gin-gonic/gin"
)

// StreamConnManagerMiddleware creates a Connection for the incoming
// stream request, registers it and guarantees it is unregistered once
// the stream handler returns (client disconnect or server close).
func StreamConnManagerMiddleware(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		conn := NewConnection()
		service.Register(gctx, conn)

		defer func() {
			// The request context is already cancelled on client
			// disconnect, cleanup runs on a detached one.
			service.Unregister(context.Background(), conn)
		}()

		gctx.Set("Conn", conn)
		gctx.Next()
	}
}
