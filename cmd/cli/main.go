package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/pyslotgen/internal/cli"
	"github.com/specialistvlad/pyslotgen/internal/diag"
)

// main is the entrypoint for the pyslotgen application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.ExitFailure)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	defer recoverInternal(&err)
	return cli.Execute(ctx, args, outW)
}

// recoverInternal turns a panic carrying an internal consistency error into
// an ordinary failure. Any other panic keeps unwinding.
func recoverInternal(err *error) {
	r := recover()
	if r == nil {
		return
	}
	internal, ok := diag.AsInternal(r)
	if !ok {
		panic(r)
	}
	*err = &cli.ExitError{Code: cli.ExitFailure, Message: "pyslotgen aborted: " + internal.Error()}
}
