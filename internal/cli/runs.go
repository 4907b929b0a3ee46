package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/soundcheck/internal/store"
)

// RunsListOptions holds flags for the runs list command.
type RunsListOptions struct {
	*RootOptions
	Database string
	Limit    int
	Scenario string
}

// RunsShowOptions holds flags for the runs show command.
type RunsShowOptions struct {
	*RootOptions
	Database string
}

// NewRunsCommand creates the runs command group.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect persisted verification runs",
		Long: `Inspect verification runs persisted by test --db and probe --db.

Examples:
  soundcheck runs list --db ./soundcheck.db
  soundcheck runs list --db ./soundcheck.db --scenario healthy_listing --limit 5
  soundcheck runs show <run-id> --db ./soundcheck.db`,
	}

	cmd.AddCommand(newRunsListCommand(rootOpts))
	cmd.AddCommand(newRunsShowCommand(rootOpts))

	return cmd
}

// newRunsListCommand creates the runs list command.
func newRunsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List persisted runs, newest first",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "filter to a single scenario")

	return cmd
}

func runRunsList(opts *RunsListOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var summaries []store.RunSummary
	if opts.Scenario != "" {
		summaries, err = st.ListScenarioRuns(ctx, opts.Scenario, opts.Limit)
	} else {
		summaries, err = st.ListRuns(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Format == "json" {
		return formatter.Success(summaries)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	for _, s := range summaries {
		mark := "✓"
		if !s.Passed {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s  %s  (%d checks", mark, s.ID, s.Started.Format(time.RFC3339), s.Scenario, s.Checks)
		if s.Failures > 0 {
			fmt.Fprintf(w, ", %d failed", s.Failures)
		}
		fmt.Fprintln(w, ")")
	}
	return nil
}

// newRunsShowCommand creates the runs show command.
func newRunsShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show one run with its verdicts",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRunsShow(opts *RunsShowOptions, id string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	rep, err := st.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", id))
		}
		return WrapExitError(ExitCommandError, "failed to get run", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Format == "json" {
		return formatter.Success(rep)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s\n", rep.ID)
	fmt.Fprintf(w, "  scenario: %s\n", rep.Scenario)
	fmt.Fprintf(w, "  endpoint: %s\n", rep.Endpoint)
	fmt.Fprintf(w, "  started:  %s\n", rep.Started.Format(time.RFC3339))
	if rep.StatusCode != 0 {
		fmt.Fprintf(w, "  status:   %d\n", rep.StatusCode)
	}
	fmt.Fprintf(w, "  latency:  %dms\n", rep.LatencyMS)
	fmt.Fprintln(w)
	renderVerdicts(w, rep)
	return nil
}
