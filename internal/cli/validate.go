package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/renderplan/internal/compiler"
)

// FixtureValidation holds the validation result of one fixture.
type FixtureValidation struct {
	Name   string                     `json:"name"`
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Fixtures []FixtureValidation `json:"fixtures"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixture-file-or-dir>",
		Short: "Validate fixtures without planning",
		Long: `Compile CUE fixtures and check them: timings, ports, node kinds and
runtimes, prerequisite references and cycles, and the segment list.

Exit codes:
  0 - All fixtures valid
  1 - Validation errors found
  2 - Command error (path not found, CUE syntax errors)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	if err := requireFile(f, path, "fixture path"); err != nil {
		return err
	}
	specs, err := compiler.Compile(path)
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			return f.Fail(ExitCommandError, ErrCodeCompileFailed, err, map[string]string{"field": ce.Field})
		}
		return f.Fail(ExitCommandError, ErrCodeCompileFailed, err, nil)
	}

	result := ValidationResult{Valid: true, Fixtures: make([]FixtureValidation, 0, len(specs))}
	for i := range specs {
		f.VerboseLog("Validating fixture: %s", specs[i].Name)
		errs := compiler.ValidateFixture(&specs[i])
		result.Fixtures = append(result.Fixtures, FixtureValidation{
			Name:   specs[i].Name,
			Valid:  len(errs) == 0,
			Errors: errs,
		})
		if len(errs) > 0 {
			result.Valid = false
		}
	}

	if !result.Valid {
		if err := f.Error(ErrCodeInvalidFixture, "validation failed", result); err != nil {
			return err
		}
		if f.Format != "json" {
			writeValidationText(f.Writer, result)
		}
		return NewExitError(ExitFailure, "validation failed")
	}
	return f.Success(result, func(w io.Writer) { writeValidationText(w, result) })
}

func writeValidationText(w io.Writer, r ValidationResult) {
	for _, fv := range r.Fixtures {
		if fv.Valid {
			fmt.Fprintf(w, "✓ %s\n", fv.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", fv.Name)
		for _, e := range fv.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	if r.Valid {
		fmt.Fprintf(w, "%d fixture(s) valid\n", len(r.Fixtures))
	}
}
