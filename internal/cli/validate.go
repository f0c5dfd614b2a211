package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/yartsul/internal/catalog"
	"github.com/roach88/yartsul/internal/demo"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Model string // demo model whose registry the catalog must match
}

// ValidationResult is the outcome of a validate command.
type ValidationResult struct {
	Catalog string                    `json:"catalog"`
	Model   string                    `json:"model,omitempty"`
	Tags    []string                  `json:"tags"`
	Valid   bool                      `json:"valid"`
	Errors  []catalog.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <catalog.cue|dir>",
		Short: "Validate an action catalog",
		Long: `Compile a CUE action catalog and check it for duplicate or empty tags.

With --model, the catalog is also checked against that model's action
registry: every declared tag must be handled with the same payload kind,
and every handled tag must be declared.

Examples:
  yartsul validate ./testdata/catalogs/counter.cue
  yartsul validate ./testdata/catalogs/todo.cue --model todo`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Model, "model", "", "check against a built-in model ("+strings.Join(demo.Names(), "|")+")")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cat, err := catalog.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("catalog not found: %s", path), nil)
			return WrapExitError(ExitCommandError, "catalog not found", err)
		}
		_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
		return WrapExitError(ExitFailure, "catalog does not compile", err)
	}
	formatter.VerboseLog("Compiled catalog %s: %d action(s)", cat.Name, len(cat.Entries))

	result := ValidationResult{
		Catalog: path,
		Model:   opts.Model,
		Tags:    cat.Tags(),
	}
	result.Errors = append(result.Errors, cat.Validate()...)

	if opts.Model != "" {
		model, ok := demo.Lookup(opts.Model)
		if !ok {
			msg := fmt.Sprintf("unknown model %q (known: %s)", opts.Model, strings.Join(demo.Names(), ", "))
			_ = formatter.Error(ErrCodeUnknownModel, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		formatter.VerboseLog("Checking against model %s", model.Name())
		result.Errors = append(result.Errors, cat.CheckRegistry(model.Registry())...)
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		msg := fmt.Sprintf("%d validation error(s)", len(result.Errors))
		if formatter.JSON() {
			if err := formatter.Fail(ErrCodeInvalid, msg, result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s\n", path)
			for _, e := range result.Errors {
				fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
			}
		}
		return NewExitError(ExitFailure, msg)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s: %d action(s) valid\n", path, len(result.Tags))
	for _, tag := range result.Tags {
		formatter.VerboseLog("  %s", tag)
	}
	return nil
}
