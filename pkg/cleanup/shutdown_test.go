// Graceful shutdown tests in Chime.

package cleanup

import (
	"Chime/pkg/log"
	"context"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGracefulShutdownRunsEveryOperation(t *testing.T) {
	logger := log.New("test")

	var mu sync.Mutex
	ran := []string{}
	record := func(name string) Operation {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			ran = append(ran, name)
			return nil
		}
	}

	wait := GracefulShutdown(context.Background(), logger, 3*time.Second, map[string]Operation{
		"First-op":  record("First-op"),
		"Second-op": record("Second-op"),
		// An operation error must not block the rest of the shutdown
		"Broken-op": func(ctx context.Context) error {
			return assert.AnError
		},
	})

	// Raise the termination signal the process would normally receive
	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-wait:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"First-op", "Second-op"}, ran)
}
