package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/soundcheck/internal/contract"
	"github.com/roach88/soundcheck/internal/gate"
	"github.com/roach88/soundcheck/internal/page"
	"github.com/roach88/soundcheck/internal/probe"
	"github.com/roach88/soundcheck/internal/report"
	"github.com/roach88/soundcheck/internal/schema"
	"github.com/roach88/soundcheck/internal/store"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	Budget   time.Duration
	Strict   bool
	Database string
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Probe a live festival endpoint",
		Long: `Probe a festival endpoint once and verify the exchange.

Runs the gate checks (healthy, throttle observation, latency budget)
against the live response. A 200 response is additionally checked for
schema conformance and canonical ordering; --strict adds the CUE
contract cross-check. With --db the report is persisted for later
inspection via the runs command.

Exit codes:
  0 - All checks passed
  1 - One or more checks failed
  2 - Command error (database not writable, etc.)

Examples:
  soundcheck probe http://localhost:8080/festivals
  soundcheck probe http://localhost:8080/festivals --budget 200ms
  soundcheck probe http://localhost:8080/festivals --strict --db ./soundcheck.db
  soundcheck probe http://localhost:8080/festivals --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Budget, "budget", gate.DefaultBudget, "latency budget")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "cross-check the payload against the CUE contract")
	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the report to this SQLite database")

	return cmd
}

func runProbe(opts *ProbeOptions, url string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Probing %s (budget %s)", url, opts.Budget)
	resp := probe.New().Fetch(ctx, url)

	rep := report.New("probe", url)
	rep.StatusCode = resp.StatusCode
	rep.LatencyMS = resp.Duration.Milliseconds()

	rep.Add(report.HealthyVerdict(resp))
	rep.Add(report.ThrottleVerdict(resp))
	rep.Add(report.LatencyVerdict(resp, opts.Budget))

	// Body checks only apply to a 200 exchange; error statuses are already
	// fully described by the gate verdicts.
	if resp.Err == nil && resp.StatusCode == http.StatusOK {
		rep.Add(report.SchemaVerdicts(schema.Validate(resp.Body, schema.AllowEmpty))...)
		if opts.Strict {
			rep.Add(report.CUEVerdict(schema.ValidateCUE(resp.Body)))
		}
		if payload, err := contract.DecodePayload(resp.Body); err == nil {
			rep.Add(report.OrderingVerdict(page.ServedOrder(payload)))
		}
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		if _, err := st.WriteReport(ctx, rep); err != nil {
			return WrapExitError(ExitCommandError, "failed to persist report", err)
		}
		formatter.VerboseLog("Report %s persisted to %s", rep.ID, opts.Database)
	}

	if opts.Format == "json" {
		return outputProbeJSON(formatter, rep)
	}
	return outputProbeText(cmd.OutOrStdout(), url, resp, rep)
}

// outputProbeJSON outputs the probe report as JSON.
func outputProbeJSON(formatter *OutputFormatter, rep report.Report) error {
	response := CLIResponse{
		Status: "ok",
		Data:   rep,
	}

	failed := len(rep.Failures())
	if failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_PROBE_FAILED",
			Message: fmt.Sprintf("%d check(s) failed", failed),
		}
	}

	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", failed))
	}
	return nil
}

// outputProbeText outputs the probe report as text.
func outputProbeText(w io.Writer, url string, resp gate.Response, rep report.Report) error {
	mark := "✓"
	if !rep.Pass() {
		mark = "✗"
	}
	if resp.Err != nil {
		fmt.Fprintf(w, "%s %s (request failed: %v)\n", mark, url, resp.Err)
	} else {
		fmt.Fprintf(w, "%s %s (%d, %dms)\n", mark, url, resp.StatusCode, rep.LatencyMS)
	}
	renderVerdicts(w, rep)

	if failed := len(rep.Failures()); failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", failed))
	}
	return nil
}
