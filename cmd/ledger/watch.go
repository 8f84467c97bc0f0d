package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/expense-share/client/internal/metrics"
	"github.com/expense-share/client/internal/model"
	"github.com/expense-share/client/internal/notify"
	"github.com/expense-share/client/internal/recorder"
)

var allEventTypes = []string{
	model.EventInvite,
	model.EventCategoriesChanged,
	model.EventExpensesChanged,
	model.EventSettlementUpdate,
}

var (
	watchCmd = &cobra.Command{
		Use:   "watch [event-type...]",
		Short: "Print live notifications until interrupted",
		Long: "Subscribes to the notification socket and prints one JSON line per message.\n" +
			"Without arguments every event type is watched. Cached invites, expenses and\n" +
			"settlements are refreshed as notifications arrive.",
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, env *cliEnv, args []string) error {
			if env.relay == nil || env.relay.URL() == "" {
				return errors.New("notifications are disabled")
			}
			types := args
			if len(types) == 0 {
				types = allEventTypes
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := metricsAddrFlag
			if addr == "" {
				addr = env.cfg.MetricsAddr
			}
			if addr != "" {
				shutdown := serveMetrics(addr, env)
				defer shutdown()
			}

			if recordFlag != "" {
				rec, err := recorder.Create(recordFlag)
				if err != nil {
					return err
				}
				defer rec.Close()
				if err := rec.WriteHeader(env.relay.URL(), types); err != nil {
					return err
				}
				env.logger.Info().Str("file", recordFlag).Time("started", rec.StartTime()).Msg("recording notifications")
				onErr := func(err error) {
					env.logger.Warn().Err(err).Str("file", recordFlag).Msg("recording failed")
				}
				for _, t := range types {
					defer env.relay.Subscribe(t, rec.Handler(onErr))()
				}
			}

			printer := &envelopePrinter{w: cmd.OutOrStdout()}
			for _, t := range types {
				defer env.relay.Subscribe(t, printer.Handle)()
			}

			env.app.Invites.ConnectToInviteSocket()
			env.app.Expenses.ConnectToExpenseNotifications()

			env.logger.Info().Str("url", env.relay.URL()).Strs("types", types).Msg("watching notifications")
			<-ctx.Done()
			return nil
		}),
	}

	replayCmd = &cobra.Command{
		Use:   "replay <file>",
		Short: "Print the notifications in a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return replay(ctx, cmd.OutOrStdout(), args[0], speedFlag)
		},
	}
)

func replay(ctx context.Context, w io.Writer, path string, speed float64) error {
	header, events, err := recorder.ReadFile(path)
	if err != nil {
		return err
	}
	if header.Version != recorder.FormatVersion {
		return fmt.Errorf("unsupported recording version %d", header.Version)
	}

	printer := &envelopePrinter{w: w}
	err = recorder.Replay(ctx, events, speed, func(ev recorder.Event) {
		printer.Handle(ev.Data, ev.Envelope())
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// envelopePrinter writes each envelope as one compact JSON line.
type envelopePrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *envelopePrinter) Handle(_ json.RawMessage, env notify.Envelope) {
	line, err := json.Marshal(env)
	if err != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, string(line))
}

// serveMetrics exposes Prometheus metrics and a JSON snapshot on addr.
func serveMetrics(addr string, env *cliEnv) (shutdown func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.PromHandler())
	mux.Handle("/stats", metrics.JSONHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			env.logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	env.logger.Info().Str("addr", addr).Msg("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
