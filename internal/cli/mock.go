package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/soundcheck/internal/log"
	"github.com/roach88/soundcheck/internal/upstream"
)

// MockOptions holds flags for the mock command.
type MockOptions struct {
	*RootOptions
	Addr           string
	Mode           string
	FixturePath    string
	Delay          time.Duration
	ThrottleLimit  int
	ThrottleWindow time.Duration
}

// NewMockCommand creates the mock command.
func NewMockCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MockOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve the mock upstream",
		Long: `Serve the festival endpoint double as a standalone process.

The server answers GET /festivals according to the selected mode, plus
/healthz and /metrics. With --fixture the payload comes from a file and
reloads on change, so a listing can be edited while probes run against it.

Modes:
  ok       - 200 with the fixture payload
  empty    - 200 with an empty listing
  error    - 500
  throttle - 429 once the rate limit is exhausted
  slow     - 200 after the configured delay

Examples:
  soundcheck mock
  soundcheck mock --addr :9090 --mode slow --delay 2s
  soundcheck mock --fixture ./festivals.json
  soundcheck mock --mode throttle --throttle-limit 5 --throttle-window 30s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMock(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Mode, "mode", "ok", "upstream mode (ok|empty|error|throttle|slow)")
	cmd.Flags().StringVar(&opts.FixturePath, "fixture", "", "payload file, reloaded on change")
	cmd.Flags().DurationVar(&opts.Delay, "delay", 0, "slow mode response delay (default 1s)")
	cmd.Flags().IntVar(&opts.ThrottleLimit, "throttle-limit", 0, "throttle mode requests per window (default 1)")
	cmd.Flags().DurationVar(&opts.ThrottleWindow, "throttle-window", 0, "throttle mode window (default 1m)")

	return cmd
}

func runMock(opts *MockOptions) error {
	logger := log.WithComponent("cli")

	mode, err := upstream.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid mode", err)
	}

	server, err := upstream.New(upstream.Config{
		Mode:           mode,
		FixturePath:    opts.FixturePath,
		Delay:          opts.Delay,
		ThrottleLimit:  opts.ThrottleLimit,
		ThrottleWindow: opts.ThrottleWindow,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build upstream", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.FixturePath != "" {
		go func() {
			if err := server.Watch(ctx); err != nil {
				logger.Error().Err(err).Msg("fixture watch stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()
	logger.Info().Str("addr", opts.Addr).Str("mode", string(mode)).Msg("mock upstream listening")

	select {
	case err := <-serverErr:
		return WrapExitError(ExitCommandError, "mock server failed", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitCommandError, "shutdown failed", err)
	}
	if err := <-serverErr; !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitCommandError, "mock server failed", err)
	}
	return nil
}
