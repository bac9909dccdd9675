package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing() CheckFunc {
	return func(_ context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func report(t *testing.T, endpoint http.HandlerFunc) (int, probeReport) {
	t.Helper()
	w := httptest.NewRecorder()
	endpoint(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body probeReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	s := New()
	s.AddLivenessCheck("goroutines", time.Second, passing())
	s.AddLivenessCheck("gc", time.Second, passing())

	code, body := report(t, s.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestLiveEndpoint_FailureStreakFlipsProbe(t *testing.T) {
	s := New()
	s.AddLivenessCheck("collab", time.Second, failing("connection refused"))
	p := s.liveness[0]
	ctx := context.Background()

	// Below the streak the probe holds its healthy verdict.
	p.execute(ctx)
	p.execute(ctx)
	code, _ := report(t, s.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)

	p.execute(ctx)
	code, body := report(t, s.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["collab"])
}

func TestProbe_RecoversAfterSinglePass(t *testing.T) {
	down := true
	s := New()
	s.AddLivenessCheck("flaky", time.Second, func(_ context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	})
	p := s.liveness[0]
	ctx := context.Background()

	for range failStreak {
		p.execute(ctx)
	}
	ok, _ := p.state()
	require.False(t, ok)

	down = false
	p.execute(ctx)
	ok, _ = p.state()
	assert.True(t, ok)
}

func TestReadyEndpoint_RequiresManualGate(t *testing.T) {
	s := New()
	s.AddReadinessCheck("order-service", time.Second, passing())

	code, body := report(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")

	s.SetReady(true)
	code, body = report(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)

	// Graceful shutdown flips the gate back.
	s.SetReady(false)
	code, _ = report(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadyEndpoint_OnlyFailingProbesReported(t *testing.T) {
	s := New()
	s.AddReadinessCheck("order-service", time.Second, passing())
	s.AddReadinessCheck("redis", time.Second, failing("no route to host"))
	s.SetReady(true)

	ctx := context.Background()
	for range failStreak {
		s.readiness[1].execute(ctx)
	}

	code, body := report(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "redis")
	assert.NotContains(t, body.Checks, "order-service")
}

func TestIsReady(t *testing.T) {
	s := New()
	s.AddReadinessCheck("order-service", time.Second, passing())

	assert.False(t, s.IsReady())
	s.SetReady(true)
	assert.True(t, s.IsReady())

	for range failStreak {
		s.readiness[0].execute(context.Background())
	}
	assert.True(t, s.IsReady(), "a passing probe keeps readiness")
}

func TestEndpoints_NoProbesRegistered(t *testing.T) {
	s := New()
	s.SetReady(true)

	code, _ := report(t, s.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)
	code, _ = report(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)
}

func TestStartStop(t *testing.T) {
	s := New()
	s.AddLivenessCheck("goroutines", time.Second, passing())

	s.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	s.Stop()
	s.Stop()
}

func TestConcurrentProbeAccess(t *testing.T) {
	s := New()
	s.AddLivenessCheck("a", time.Second, failing("err"))
	s.AddReadinessCheck("b", time.Second, passing())
	s.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx, 5*time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				s.IsReady()
				report(t, s.LiveEndpoint)
				report(t, s.ReadyEndpoint)
			}
		}()
	}
	wg.Wait()
	s.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}

func TestHTTPPingCheck(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer healthy.Close()
	assert.NoError(t, HTTPPingCheck(nil, healthy.URL)(context.Background()))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	assert.Error(t, HTTPPingCheck(nil, broken.URL)(context.Background()))

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	assert.Error(t, HTTPPingCheck(nil, down.URL)(context.Background()))
}
