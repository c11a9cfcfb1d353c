package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/specialistvlad/pyslotgen/internal/app"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// flags are the command-line values shared by every subcommand.
type flags struct {
	configPath string
	strategy   string
	crate      string
	suffix     string
	logLevel   string
	logFormat  string
	jobs       int
}

// Execute runs the command line in args. Usage mistakes are reported as an
// ExitError with code 2, failed runs with code 1.
func Execute(ctx context.Context, args []string, outW io.Writer) error {
	root := NewRootCommand(outW)
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(outW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// NewRootCommand builds the pyslotgen command tree.
func NewRootCommand(outW io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "pyslotgen",
		Short: "Generate Python binding tables for Go types",
		Long: `pyslotgen reads *.pyslots.hcl manifests describing the methods, constants
and protocol slots of Go types, and writes the Go code registering them
with the pyrt binding library next to each manifest.`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to the project file (default ./"+app.ProjectFileName+" when present).")
	pf.StringVar(&f.strategy, "strategy", "", "Registration strategy: 'direct' or 'registry'.")
	pf.StringVar(&f.crate, "crate", "", "Import path of the binding library.")
	pf.StringVar(&f.suffix, "suffix", "", "Suffix of generated file names (default \""+app.DefaultSuffix+"\").")
	pf.StringVar(&f.logLevel, "log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&f.logFormat, "log-format", "", "Log output format. Options: 'text' or 'json'.")
	pf.IntVarP(&f.jobs, "jobs", "j", 0, "Number of manifests processed concurrently (default GOMAXPROCS).")

	root.AddCommand(
		&cobra.Command{
			Use:   "generate [paths...]",
			Short: "Generate binding code for manifests",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd, f, args, false, outW)
				if err != nil {
					return err
				}
				report, err := a.Run(cmd.Context())
				printSummary(outW, report, err)
				return runFailure(err)
			},
		},
		&cobra.Command{
			Use:   "check [paths...]",
			Short: "Expand manifests and verify generated code without writing",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd, f, args, true, outW)
				if err != nil {
					return err
				}
				report, err := a.Run(cmd.Context())
				printSummary(outW, report, err)
				return runFailure(err)
			},
		},
		&cobra.Command{
			Use:   "watch [paths...]",
			Short: "Regenerate binding code whenever a manifest changes",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd, f, args, false, outW)
				if err != nil {
					return err
				}
				err = a.Watch(cmd.Context(), func(report *app.Report, err error) {
					printSummary(outW, report, err)
				})
				return runFailure(err)
			},
		},
	)
	return root
}

// newApp merges flags, the project file and defaults into a validated
// configuration. Flags win over the project file.
func newApp(cmd *cobra.Command, f *flags, args []string, checkOnly bool, outW io.Writer) (*app.App, error) {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cfg := app.Config{Paths: paths, CheckOnly: checkOnly}
	changed := cmd.Flags().Changed
	if changed("strategy") {
		cfg.Strategy = f.strategy
	}
	if changed("crate") {
		cfg.Crate = f.crate
	}
	if changed("suffix") {
		cfg.Suffix = f.suffix
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if changed("jobs") {
		if f.jobs <= 0 {
			return nil, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("invalid jobs: must be positive, got %d", f.jobs)}
		}
		cfg.Jobs = f.jobs
	}

	projectPath := f.configPath
	if projectPath == "" {
		projectPath = app.ProjectFileName
	}
	project, err := app.LoadProject(projectPath, f.configPath != "")
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	project.Fill(&cfg)

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return app.NewApp(outW, config, nil), nil
}

func runFailure(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

// printSummary prints a one-line outcome of a run.
func printSummary(outW io.Writer, report *app.Report, err error) {
	if report == nil {
		pterm.Error.WithWriter(outW).Println(err)
		return
	}
	if report.Warnings() > 0 {
		pterm.Warning.WithWriter(outW).Printfln("%d warning(s)", report.Warnings())
	}
	switch {
	case err != nil:
		pterm.Error.WithWriter(outW).Println(err)
	case len(report.Written) > 0 || len(report.Removed) > 0:
		pterm.Success.WithWriter(outW).Printfln("%d manifest(s): %d file(s) written, %d removed, %d unchanged",
			report.Manifests, len(report.Written), len(report.Removed), len(report.Unchanged))
	default:
		pterm.Success.WithWriter(outW).Printfln("%d manifest(s): generated code is up to date", report.Manifests)
	}
}
