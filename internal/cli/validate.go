package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/soundcheck/internal/contract"
	"github.com/roach88/soundcheck/internal/page"
	"github.com/roach88/soundcheck/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict           bool // additionally cross-check against the CUE contract
	RequireFestivals bool // reject an empty listing
}

// OrderingIssue reports the first adjacent pair that breaks the canonical
// order, with the path of the sequence it occurred in.
type OrderingIssue struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
}

// ValidateResult holds the outcome of an offline payload check.
type ValidateResult struct {
	File          string              `json:"file"`
	Valid         bool                `json:"valid"`
	Festivals     int                 `json:"festivals"`
	Fallbacks     int                 `json:"fallbacks"`
	Errors        []schema.FieldError `json:"errors,omitempty"`
	ContractError string              `json:"contract_error,omitempty"`
	Ordering      *OrderingIssue      `json:"ordering,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <payload.json>",
		Short: "Validate a payload file offline",
		Long: `Validate a festival payload file without probing an endpoint.

Checks the structural schema (array shape, required fields), counts the
display fields that would resolve to the Unknown fallback, and verifies
canonical ordering of festivals and their bands. With --strict the payload
is additionally cross-checked against the CUE contract.

Exit codes:
  0 - Payload valid
  1 - Payload violates the contract
  2 - Command error (unreadable file, etc.)

Examples:
  soundcheck validate fixtures/festivals.json
  soundcheck validate fixtures/festivals.json --strict
  soundcheck validate fixtures/festivals.json --require-festivals --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "cross-check the payload against the CUE contract")
	cmd.Flags().BoolVar(&opts.RequireFestivals, "require-festivals", false, "reject an empty festival list")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error("E_READ", fmt.Sprintf("failed to read payload: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to read payload", err)
	}

	mode := schema.AllowEmpty
	if opts.RequireFestivals {
		mode = schema.RequireFestivals
	}

	schemaRes := schema.Validate(raw, mode)
	result := ValidateResult{
		File:   path,
		Valid:  schemaRes.Valid,
		Errors: schemaRes.Errors,
	}

	if opts.Strict {
		formatter.VerboseLog("Cross-checking against the CUE contract")
		if err := schema.ValidateCUE(raw); err != nil {
			result.Valid = false
			result.ContractError = err.Error()
		}
	}

	// The lenient decode tolerates missing fields, so fallback and ordering
	// diagnostics still come out of payloads the schema rejected.
	if payload, err := contract.DecodePayload(raw); err == nil {
		result.Festivals = len(payload)
		result.Fallbacks = countFallbacks(payload)
		if orderPath, v := page.ServedOrder(payload); v != nil {
			result.Valid = false
			result.Ordering = &OrderingIssue{
				Path:  orderPath,
				Index: v.Index,
				Prev:  v.Prev,
				Next:  v.Next,
			}
		}
	}

	if !result.Valid {
		return outputValidateFailure(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// countFallbacks counts the display fields that resolve to the sentinel.
func countFallbacks(p contract.Payload) int {
	n := 0
	for _, f := range p {
		if _, fb := contract.Display(f.Name); fb {
			n++
		}
		for _, b := range f.BandList() {
			if _, fb := contract.Display(b.Name); fb {
				n++
			}
			if _, fb := contract.Display(b.RecordLabel); fb {
				n++
			}
		}
	}
	return n
}

// violationCount tallies the independent failure dimensions of a result.
func violationCount(result ValidateResult) int {
	n := len(result.Errors)
	if result.ContractError != "" {
		n++
	}
	if result.Ordering != nil {
		n++
	}
	return n
}

// firstViolation picks the representative error for the JSON envelope.
func firstViolation(result ValidateResult) (code, message string) {
	if len(result.Errors) > 0 {
		return result.Errors[0].Code, result.Errors[0].Message
	}
	if result.ContractError != "" {
		return "E_CONTRACT", result.ContractError
	}
	return "E_ORDERING", fmt.Sprintf("%q before %q", result.Ordering.Prev, result.Ordering.Next)
}

// outputValidateSuccess outputs a valid-payload result.
func outputValidateSuccess(formatter *OutputFormatter, result ValidateResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid (%d festivals, %d fallback fields)\n",
		result.File, result.Festivals, result.Fallbacks)
	return nil
}

// outputValidateFailure outputs validation violations.
func outputValidateFailure(formatter *OutputFormatter, result ValidateResult) error {
	count := violationCount(result)

	if formatter.Format == "json" {
		code, message := firstViolation(result)
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    code,
				Message: message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "✗ %s invalid\n", result.File)
	fmt.Fprintln(formatter.Writer)

	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
	}
	if result.ContractError != "" {
		fmt.Fprintf(formatter.Writer, "  contract: %s\n", result.ContractError)
	}
	if o := result.Ordering; o != nil {
		fmt.Fprintf(formatter.Writer, "  ordering at %s[%d]: %q before %q\n", o.Path, o.Index, o.Prev, o.Next)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))
}
