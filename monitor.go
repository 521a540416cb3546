package ambience

import (
	"context"
	"time"

	"vawter.tech/stopper"
)

// startMonitor begins polling the state command every delay. It runs only
// in external mode with a state command, and at most once at a time.
func (s *Simple) startMonitor(ctx context.Context) {
	if s.inproc || s.config.State == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.monitor != nil && !s.monitor.IsStopping() {
		return
	}

	sctx := stopper.WithContext(context.WithoutCancel(ctx))
	s.monitor = sctx
	sctx.Go(s.poll)
	s.logger.Debug().Dur("delay", s.delay).Msg("health monitor started")
}

// haltMonitor stops the health monitor. A poll still in flight keeps its
// state command running but reports nothing once the monitor is halted.
// It does not wait for the poll, so a sink called from a poll may halt it.
func (s *Simple) haltMonitor() {
	s.mu.Lock()
	sctx := s.monitor
	s.monitor = nil
	s.mu.Unlock()

	if sctx == nil {
		return
	}
	sctx.Stop(monitorGrace)
	s.logger.Debug().Msg("health monitor halted")
}

// poll is the monitor loop. Stopping is checked after every tick and right
// before the timer is rearmed.
func (s *Simple) poll(sctx *stopper.Context) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	for {
		select {
		case <-sctx.Stopping():
			return nil
		case <-timer.C:
		}
		if sctx.IsStopping() {
			return nil
		}

		s.tick(sctx)

		if sctx.IsStopping() {
			return nil
		}
		timer.Reset(s.delay)
	}
}

// tick runs the state command once. The command itself is never cancelled.
// Its result is reported only while sctx is still the active monitor.
func (s *Simple) tick(sctx *stopper.Context) {
	state := StateRunning
	if _, err := s.run(context.WithoutCancel(sctx), OpState, s.config.State); err != nil {
		s.logger.Debug().Err(err).Msg("state check failed")
		state = StateStopped
	}

	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.monitor != sctx {
		return
	}
	s.post(stateEvent(state))
}
