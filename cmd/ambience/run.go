package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evo-cloud/ambience"
	"github.com/evo-cloud/ambience/internal/confwatch"
	"github.com/evo-cloud/ambience/internal/metrics"
	"github.com/evo-cloud/ambience/internal/statefile"
)

type runFlags struct {
	stateFile       string
	metricsAddr     string
	watch           bool
	concurrency     int
	shutdownTimeout time.Duration
}

func newRunCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:               "run",
		Short:             "Load and start every configured container until interrupted",
		PersistentPreRunE: initCommand,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return doRun(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.stateFile, "state-file", "", "keep a JSON snapshot of container states at this path")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "reload containers when the configuration file changes")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 10, "maximum concurrent lifecycle operations")
	cmd.Flags().DurationVar(&flags.shutdownTimeout, "shutdown-timeout", 30*time.Second, "how long to wait for containers to go offline")
	return cmd
}

func doRun(ctx context.Context, flags runFlags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := newDaemon(logger)
	sinks := []ambience.EventSink{d.logEvent, d.drainSink}

	if flags.stateFile != "" {
		w := statefile.New(flags.stateFile, logger)
		sinks = append(sinks, w.Record)
		d.forget = append(d.forget, func(id string) { _ = w.Forget(id) })
	}

	if flags.metricsAddr != "" {
		col := metrics.New()
		sinks = append(sinks, col.Observe)
		d.forget = append(d.forget, col.Forget)

		mux := http.NewServeMux()
		mux.Handle("/metrics", col.Handler())
		srv := &http.Server{Addr: flags.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		logger.Info().Str("addr", flags.metricsAddr).Msg("serving metrics")
	}

	d.mgr = ambience.NewManager(
		ambience.WithConcurrency(flags.concurrency),
		ambience.WithSink(ambience.Sinks(sinks...)),
		ambience.WithSupervisorOptions(ambience.WithLogger(logger)),
	)

	if err := d.apply(ctx, config.Containers); err != nil {
		logger.Error().Err(err).Msg("starting containers")
	}

	var changes <-chan confwatch.Event
	if flags.watch {
		events, cleanup, err := confwatch.Watch(ctx, flagConfigPath, 0)
		if err != nil {
			return err
		}
		defer func() { _ = cleanup() }()
		changes = events
	}

	logger.Info().Strs("containers", d.mgr.IDs()).Msg("running")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), flags.shutdownTimeout)
			defer cancel()
			return d.shutdown(sctx)

		case e, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if e.Err != nil {
				logger.Warn().Err(e.Err).Msg("watching configuration")
				continue
			}
			cfg, err := loadConfig(flagConfigPath)
			if err != nil {
				logger.Error().Err(err).Msg("reloading configuration")
				continue
			}
			logger.Info().Msg("configuration changed, reconciling")
			if err := d.apply(ctx, cfg.Containers); err != nil {
				logger.Error().Err(err).Msg("reconciling containers")
			}
		}
	}
}

// daemon keeps the running containers in line with the configuration
type daemon struct {
	mgr     *ambience.Manager
	logger  zerolog.Logger
	configs map[string]ambience.Config
	forget  []func(id string)

	// offline events are recorded only while draining
	draining atomic.Bool
	drained  *ambience.Recorder
}

func newDaemon(logger zerolog.Logger) *daemon {
	return &daemon{
		logger:  logger,
		configs: make(map[string]ambience.Config),
		drained: ambience.NewRecorder(),
	}
}

func (d *daemon) logEvent(e ambience.Event) {
	ev := d.logger.Info()
	if e.Kind == ambience.EventError {
		ev = d.logger.Warn()
	}
	ev.Str("container", e.ID).Stringer("kind", e.Kind).Msg(e.String())
}

func (d *daemon) drainSink(e ambience.Event) {
	if d.draining.Load() {
		d.drained.Sink(e)
	}
}

// apply stops and unloads containers that disappeared or changed, then
// adds, loads and starts the new ones
func (d *daemon) apply(ctx context.Context, configs map[string]ambience.Config) error {
	var stale, fresh []string
	for id, old := range d.configs {
		if cfg, ok := configs[id]; !ok || cfg != old {
			stale = append(stale, id)
		}
	}
	for id, cfg := range configs {
		if old, ok := d.configs[id]; !ok || cfg != old {
			fresh = append(fresh, id)
		}
	}
	slices.Sort(stale)
	slices.Sort(fresh)

	merr := &ambience.MultiError{}

	if len(stale) > 0 {
		d.logger.Info().Strs("containers", stale).Msg("retiring containers")
		merr.Add(d.mgr.Stop(ctx, ambience.OpOptions{}, stale...))
		merr.Add(d.mgr.Unload(ctx, ambience.OpOptions{}, stale...))
		for _, id := range stale {
			d.mgr.Remove(id)
			delete(d.configs, id)
			for _, forget := range d.forget {
				forget(id)
			}
		}
	}

	var added []string
	for _, id := range fresh {
		if _, err := d.mgr.Add(id, configs[id]); err != nil {
			merr.Add(err)
			continue
		}
		d.configs[id] = configs[id]
		added = append(added, id)
	}
	if len(added) > 0 {
		d.logger.Info().Strs("containers", added).Msg("starting containers")
		merr.Add(d.mgr.Load(ctx, ambience.OpOptions{}, added...))
		merr.Add(d.mgr.Start(ctx, ambience.OpOptions{}, added...))
	}

	return merr.Err()
}

// shutdown stops and unloads everything and waits until every container
// reported offline or ctx expires
func (d *daemon) shutdown(ctx context.Context) error {
	d.draining.Store(true)

	ids := d.mgr.IDs()
	merr := &ambience.MultiError{}
	merr.Add(d.mgr.Stop(ctx, ambience.OpOptions{}))
	merr.Add(d.mgr.Unload(ctx, ambience.OpOptions{}))

	pending := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		pending[id] = struct{}{}
	}
	for len(pending) > 0 {
		e, err := d.drained.Wait(ctx, ambience.StateOffline)
		if err != nil {
			d.logger.Warn().Int("pending", len(pending)).Msg("containers did not go offline in time")
			merr.Add(err)
			break
		}
		delete(pending, e.ID)
	}

	return merr.Err()
}
