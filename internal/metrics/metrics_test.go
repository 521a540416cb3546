package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evo-cloud/ambience"
)

func TestObserveCountsEvents(t *testing.T) {
	c := New()

	c.Observe(ambience.Event{ID: "web", Kind: ambience.EventState, State: ambience.StateRunning})
	c.Observe(ambience.Event{ID: "web", Kind: ambience.EventError, Err: errors.New("boom")})
	c.Observe(ambience.Event{ID: "web", Kind: ambience.EventError, Err: errors.New("boom")})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues("web", "state")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("web", "error")))
}

func TestObserveTracksLastState(t *testing.T) {
	c := New()

	c.Observe(ambience.Event{ID: "web", Kind: ambience.EventState, State: ambience.StateRunning})
	c.Observe(ambience.Event{ID: "web", Kind: ambience.EventState, State: ambience.StateStopped})

	assert.Equal(t, 0.0, testutil.ToFloat64(c.state.WithLabelValues("web", "running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.state.WithLabelValues("web", "stopped")))
}

func TestForget(t *testing.T) {
	c := New()
	c.Observe(ambience.Event{ID: "web", Kind: ambience.EventState, State: ambience.StateRunning})
	c.Observe(ambience.Event{ID: "db", Kind: ambience.EventState, State: ambience.StateRunning})

	c.Forget("web")

	assert.Equal(t, 1, testutil.CollectAndCount(c.state))
	assert.Equal(t, 1, testutil.CollectAndCount(c.events))
}

func TestHandler(t *testing.T) {
	c := New()
	c.Observe(ambience.Event{ID: "web", Kind: ambience.EventState, State: ambience.StateRunning})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `ambience_container_state{container="web",state="running"} 1`))
	assert.True(t, strings.Contains(body, `ambience_events_total{container="web",kind="state"} 1`))
}
