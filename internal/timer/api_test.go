// Unit tests of REST APIs in internal package timer.

package timer

import (
	"Chime/internal/entity"
	"Chime/internal/errors"
	"Chime/internal/sse"
	"Chime/internal/test"
	"Chime/pkg/log"
	"Chime/pkg/validations"
	"bytes"
	"context"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var (
	mockRouter    *gin.Engine
	logger        log.Logger
	timerRepo     *fakeTimerRepository
	streamService sse.Service
)

func TestMain(m *testing.M) {
	logger = log.New("test")
	validations.RegisterCustomValidations(context.Background(), logger)
	mockRouter = test.MockRouter()
	streamService = sse.NewService(fakeStreamRepository{}, logger, 0)
	timerRepo = newFakeTimerRepository()
	APIHandlers(mockRouter, NewService(timerRepo, streamService, logger), logger)
	os.Exit(m.Run())
}

// fakeStreamRepository is a no-op presence set, the broadcast path under
// test only needs the in-process registry.
type fakeStreamRepository struct{}

func (fakeStreamRepository) AddClient(ctx context.Context, logger log.Logger, connID string) error {
	return nil
}

func (fakeStreamRepository) RemoveClient(ctx context.Context, logger log.Logger, connID string) error {
	return nil
}

func (fakeStreamRepository) CountClients(ctx context.Context, logger log.Logger) (int64, error) {
	return 0, nil
}

// fakeTimerRepository keeps timer records in memory so API tests run
// without a redis-server.
type fakeTimerRepository struct {
	mu     sync.Mutex
	timers map[string]entity.Timer
	fail   bool
}

func newFakeTimerRepository() *fakeTimerRepository {
	return &fakeTimerRepository{timers: make(map[string]entity.Timer)}
}

func (r *fakeTimerRepository) reset(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = make(map[string]entity.Timer)
	r.fail = fail
}

func (r *fakeTimerRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

func (r *fakeTimerRepository) SetTimer(ctx context.Context, logger log.Logger, timer entity.Timer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return assert.AnError
	}
	r.timers[timer.ID] = timer
	return nil
}

func (r *fakeTimerRepository) GetTimers(ctx context.Context, logger log.Logger) ([]entity.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timers := []entity.Timer{}
	for _, timer := range r.timers {
		timers = append(timers, timer)
	}
	return timers, nil
}

func (r *fakeTimerRepository) RemoveTimer(ctx context.Context, logger log.Logger, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.timers[id]; !ok {
		return errors.NotFound("No active timer")
	}
	delete(r.timers, id)
	return nil
}

// subscribe registers a throwaway stream connection so a test can observe
// what the timer endpoints broadcast.
func subscribe(t *testing.T) *entity.Connection {
	t.Helper()
	conn := sse.NewConnection()
	streamService.Register(context.Background(), conn)
	t.Cleanup(func() {
		streamService.Unregister(context.Background(), conn)
	})
	return conn
}

func receiveBroadcast(t *testing.T, conn *entity.Connection) entity.Event {
	t.Helper()
	select {
	case event, open := <-conn.Channel:
		if !open {
			t.Fatal("stream connection closed before an event arrived")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a broadcast")
	}
	return nil
}

func assertNoBroadcast(t *testing.T, conn *entity.Connection) {
	t.Helper()
	select {
	case event := <-conn.Channel:
		t.Fatalf("unexpected %q broadcast", event.Type())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSetTimer(t *testing.T) {
	timerRepo.reset(false)
	conn := subscribe(t)

	before := time.Now().UnixMilli()
	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/timer",
		Body:         bytes.NewReader([]byte(`{"duration":5,"name":"Tea","sound":"BeachBump.mp3"}`)),
		WantResponse: []int{http.StatusOK},
		WantBody:     "Timer set for 5 seconds",
		Headers:      map[string]string{"Content-Type": "application/json"},
	})

	event := receiveBroadcast(t, conn)
	assert.Equal(t, entity.EventNewTimer, event.Type())
	timer, ok := event["timer"].(entity.Timer)
	assert.True(t, ok)
	assert.NotEmpty(t, timer.ID)
	assert.Equal(t, "Tea", timer.Name)
	assert.Equal(t, float64(5), timer.Duration)
	assert.Equal(t, "BeachBump.mp3", timer.Sound)
	assert.True(t, timer.Active)
	// endTime is "now + duration" in unix milliseconds
	assert.GreaterOrEqual(t, timer.EndTime, before+5000)
	assert.LessOrEqual(t, timer.EndTime, time.Now().UnixMilli()+5000)

	assert.Equal(t, 1, timerRepo.count())
}

func TestSetTimerAppliesDefaults(t *testing.T) {
	timerRepo.reset(false)
	conn := subscribe(t)

	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/timer",
		Body:         bytes.NewReader([]byte(`{"duration":60}`)),
		WantResponse: []int{http.StatusOK},
		WantBody:     "Timer set for 60 seconds",
		Headers:      map[string]string{"Content-Type": "application/json"},
	})

	event := receiveBroadcast(t, conn)
	timer, ok := event["timer"].(entity.Timer)
	assert.True(t, ok)
	assert.Equal(t, "Timer", timer.Name)
	assert.Equal(t, "NickPowerHouse.mp3", timer.Sound)
}

func TestSetTimerAcceptsAnyPositiveDuration(t *testing.T) {
	// Durations have no upper bound and may be fractional seconds
	timerRepo.reset(false)
	conn := subscribe(t)

	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/timer",
		Body:         bytes.NewReader([]byte(`{"duration":90000}`)),
		WantResponse: []int{http.StatusOK},
		WantBody:     "Timer set for 90000 seconds",
		Headers:      map[string]string{"Content-Type": "application/json"},
	})
	event := receiveBroadcast(t, conn)
	timer, ok := event["timer"].(entity.Timer)
	assert.True(t, ok)
	assert.Equal(t, float64(90000), timer.Duration)

	before := time.Now().UnixMilli()
	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/timer",
		Body:         bytes.NewReader([]byte(`{"duration":1.5}`)),
		WantResponse: []int{http.StatusOK},
		WantBody:     "Timer set for 1.5 seconds",
		Headers:      map[string]string{"Content-Type": "application/json"},
	})
	event = receiveBroadcast(t, conn)
	timer, ok = event["timer"].(entity.Timer)
	assert.True(t, ok)
	assert.Equal(t, 1.5, timer.Duration)
	assert.GreaterOrEqual(t, timer.EndTime, before+1500)
	assert.LessOrEqual(t, timer.EndTime, time.Now().UnixMilli()+1500)

	assert.Equal(t, 2, timerRepo.count())
}

func TestSetTimerInvalid(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantBody string
	}{
		{"missing duration", `{}`, `"error":"Invalid duration"`},
		{"negative duration", `{"duration":-5}`, `"error":"Invalid duration"`},
		{"zero duration", `{"duration":0}`, `"error":"Invalid duration"`},
		{"non-numeric duration", `{"duration":"abc"}`, `"error":"Invalid duration"`},
		{"path fragment in sound", `{"duration":5,"sound":"../../etc/passwd"}`, `"error":"Invalid sound"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			timerRepo.reset(false)
			conn := subscribe(t)

			test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
				Method:       http.MethodPost,
				Path:         "/api/timer",
				Body:         bytes.NewReader([]byte(tc.body)),
				WantResponse: []int{http.StatusBadRequest},
				WantBody:     tc.wantBody,
				Headers:      map[string]string{"Content-Type": "application/json"},
			})

			// Invalid input changes nothing and reaches nobody
			assertNoBroadcast(t, conn)
			assert.Equal(t, 0, timerRepo.count())
		})
	}
}

func TestSetTimerStorageFailure(t *testing.T) {
	timerRepo.reset(true)
	conn := subscribe(t)

	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/timer",
		Body:         bytes.NewReader([]byte(`{"duration":5}`)),
		WantResponse: []int{http.StatusInternalServerError},
		WantBody:     `"error":"Failed to set timer"`,
		Headers:      map[string]string{"Content-Type": "application/json"},
	})

	assertNoBroadcast(t, conn)
}

func TestGetTimers(t *testing.T) {
	timerRepo.reset(false)

	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodGet,
		Path:         "/api/timer",
		Body:         nil,
		WantResponse: []int{http.StatusOK},
		WantBody:     "[]",
	})

	seeded := entity.Timer{ID: "cab000", Name: "Tea", Duration: 5, EndTime: 1700000000000, Sound: "BeachBump.mp3", Active: true}
	assert.NoError(t, timerRepo.SetTimer(context.Background(), logger, seeded))

	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodGet,
		Path:         "/api/timer",
		Body:         nil,
		WantResponse: []int{http.StatusOK},
		WantBody:     `"id":"cab000"`,
	})
}

func TestStopTimer(t *testing.T) {
	timerRepo.reset(false)
	seeded := entity.Timer{ID: "cab000", Name: "Tea", Duration: 5, EndTime: 1700000000000, Active: true}
	assert.NoError(t, timerRepo.SetTimer(context.Background(), logger, seeded))

	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodDelete,
		Path:         "/api/timer/cab000",
		Body:         nil,
		WantResponse: []int{http.StatusOK},
		WantBody:     "Timer stopped",
	})
	assert.Equal(t, 0, timerRepo.count())

	// Stopping it again reports the record is gone
	test.ExecuteAPITest(logger, t, mockRouter, test.RequestAPITest{
		Method:       http.MethodDelete,
		Path:         "/api/timer/cab000",
		Body:         nil,
		WantResponse: []int{http.StatusNotFound},
		WantBody:     `"error":"No active timer"`,
	})
}
