package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/evo-cloud/ambience"
)

// containerStatus is one entry of the status report
type containerStatus struct {
	Mode   string         `json:"mode"`
	State  ambience.State `json:"state,omitempty"`
	Status map[string]any `json:"status,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "status [container...]",
		Short: "Query container status once and print it as JSON",
		Long: `Query container status once and print it as JSON.

Command containers only run their status command; prepare and cleanup
never run. Controller containers have no status command, so each one gets
its own short-lived controller that is loaded, asked for STATUS and
unloaded again.`,
		PersistentPreRunE: initCommand,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return doStatus(ctx, cmd.OutOrStdout(), config.Containers, args)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall deadline")
	return cmd
}

func doStatus(ctx context.Context, out io.Writer, containers map[string]ambience.Config, ids []string) error {
	rec := ambience.NewRecorder()
	mgr := ambience.NewManager(
		ambience.WithSink(rec.Sink),
		ambience.WithSupervisorOptions(ambience.WithLogger(logger)),
	)

	if len(ids) == 0 {
		for id := range containers {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		cfg, ok := containers[id]
		if !ok {
			return fmt.Errorf("%w: %s", ambience.ErrUnknownContainer, id)
		}
		if _, err := mgr.Add(id, cfg); err != nil {
			return err
		}
	}
	ids = mgr.IDs()

	// controllers answer asynchronously
	var controllers []string
	pending := make(map[string]struct{})
	for _, id := range ids {
		if sup, _ := mgr.Get(id); sup.Mode() == ambience.ModeContract {
			controllers = append(controllers, id)
			pending[id] = struct{}{}
		}
	}

	if len(controllers) > 0 {
		if err := mgr.Load(ctx, ambience.OpOptions{}, controllers...); err != nil {
			logger.Warn().Err(err).Msg("loading controllers")
		}
	}
	if err := mgr.Status(ctx, ambience.OpOptions{}); err != nil {
		logger.Warn().Err(err).Msg("querying status")
	}
	for len(pending) > 0 {
		e, err := rec.WaitFunc(ctx, func(e ambience.Event) bool {
			_, ok := pending[e.ID]
			return ok && (e.Kind == ambience.EventStatus || e.Kind == ambience.EventError)
		})
		if err != nil {
			logger.Warn().Err(err).Int("pending", len(pending)).Msg("no status from controllers")
			break
		}
		delete(pending, e.ID)
	}

	report := make(map[string]*containerStatus, len(ids))
	for _, id := range ids {
		sup, _ := mgr.Get(id)
		report[id] = &containerStatus{Mode: sup.Mode().String()}
	}
	for _, e := range rec.Events() {
		entry, ok := report[e.ID]
		if !ok {
			continue
		}
		switch e.Kind {
		case ambience.EventState:
			entry.State = e.State
		case ambience.EventStatus:
			entry.Status = e.Status
		case ambience.EventError:
			entry.Error = e.Err.Error()
		}
	}

	if len(controllers) > 0 {
		if err := mgr.Unload(context.WithoutCancel(ctx), ambience.OpOptions{Force: true}, controllers...); err != nil {
			logger.Warn().Err(err).Msg("unloading controllers")
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding status report: %w", err)
	}
	return nil
}
