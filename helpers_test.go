package ambience

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

// requireShell skips tests that need a POSIX shell
func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(DefaultShell); err != nil {
		t.Skipf("%s not available: %v", DefaultShell, err)
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	t.Cleanup(cancel)
	return ctx
}

// waitState consumes recorded events up to the next state event in states
func waitState(t *testing.T, rec *Recorder, states ...State) Event {
	t.Helper()
	e, err := rec.Wait(waitCtx(t), states...)
	require.NoError(t, err, "waiting for %v", states)
	return e
}

// waitKind consumes recorded events up to the next one of kind
func waitKind(t *testing.T, rec *Recorder, kind EventKind) Event {
	t.Helper()
	e, err := rec.WaitFunc(waitCtx(t), func(e Event) bool { return e.Kind == kind })
	require.NoError(t, err, "waiting for %s event", kind)
	return e
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
