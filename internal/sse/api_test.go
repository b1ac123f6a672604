// Unit tests of REST APIs in internal package sse.

package sse

import (
	"Chime/internal/entity"
	"Chime/internal/test"
	"Chime/pkg/log"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var (
	mockRouter    *gin.Engine
	streamService Service
	logger        log.Logger
)

func TestMain(m *testing.M) {
	logger = log.New("test")
	mockRouter = test.MockRouter()
	streamService = NewService(newFakeRepository(), logger, 20*time.Millisecond)
	APIHandlers(mockRouter, streamService, StreamConnManagerMiddleware(streamService, logger), logger)
	os.Exit(m.Run())
}

// streamRecorder adds the CloseNotifier implementation gin's Stream
// expects from the response writer of a long-lived request.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closeNotify chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closeNotify
}

func waitForStreamClients(t *testing.T, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		count, err := streamService.Stats(context.Background())
		assert.NoError(t, err)
		if count == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("never reached %d stream client(s)", want)
}

func TestStreamEndpoint(t *testing.T) {
	reqCtx, cancel := context.WithCancel(context.Background())
	req, reqerr := http.NewRequestWithContext(reqCtx, http.MethodGet, "/api/events", nil)
	assert.NoError(t, reqerr)

	w := newStreamRecorder()
	finished := make(chan struct{})
	go func() {
		mockRouter.ServeHTTP(w, req)
		close(finished)
	}()

	// The connection registers before the stream loop starts
	waitForStreamClients(t, 1)
	streamService.Broadcast(context.Background(), entity.Event{
		"type": entity.EventNewTimer,
		"timer": map[string]interface{}{
			"id":      "cab000",
			"endTime": float64(1700000000000),
		},
	})

	// Leave the stream open long enough for the welcome and the broadcast
	// to be written, then disconnect the way a client would
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler never returned after client disconnect")
	}

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", w.Header().Get("Connection"))

	body := w.Body.String()
	assert.Contains(t, body, "data: ")
	assert.Contains(t, body, `"type":"welcome"`)
	assert.Contains(t, body, `"type":"new timer"`)
	assert.Contains(t, body, `"id":"cab000"`)

	// Disconnect cleaned the registry and the presence set
	waitForStreamClients(t, 0)
}

func TestStreamStats(t *testing.T) {
	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodGet,
		Path:         "/api/events/stats",
		Body:         nil,
		WantResponse: []int{http.StatusOK},
		WantBody:     `"clients":0`,
	})
}
