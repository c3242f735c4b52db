// Package cli is the context-bench command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"context_bench/internal/bench"
	"context_bench/internal/config"
	"context_bench/internal/logger"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitConfigError  = 2
	ExitRuntimeError = 3
	ExitInterrupted  = 130
)

// ExitError carries the exit code a command wants.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func configError(format string, args ...any) error {
	return &ExitError{Code: ExitConfigError, Err: fmt.Errorf(format, args...)}
}

// app is the state shared by every command.
type app struct {
	benchFile string
	env       *config.Config
	bench     *config.BenchConfig
	out       io.Writer
	count     bench.TokenCounter
}

func (a *app) load() error {
	env, err := config.LoadConfig()
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	if err := logger.InitLogger(env.LogConfig); err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	bc, err := config.LoadBenchConfig(a.benchFile)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	a.env, a.bench = env, bc
	return nil
}

// NewRootCommand builds the command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	return newRoot(&app{out: out, count: bench.Tiktoken})
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "context-bench",
		Short:         "MCP Agent Integration Benchmark",
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringVar(&a.benchFile, "bench-config", "bench.yaml", "benchmark settings file")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitConfigError, Err: err}
	})

	root.AddCommand(
		a.runCommand(),
		a.listCommand(),
		a.showCommand(),
		a.tokensCommand(),
		a.visualizeCommand(),
		a.modelsCommand(),
		a.compareCommand(),
	)
	return root
}

// Execute runs the command line and maps the outcome to an exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewRootCommand(stdout), args, stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if ctx.Err() != nil {
		fmt.Fprintln(stderr, "\nReceived interrupt, stopping.")
		return ExitInterrupted
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		if ee.Err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.Err)
		}
		return ee.Code
	}
	fmt.Fprintf(stderr, "Fatal error: %v\n", err)
	return ExitRuntimeError
}
