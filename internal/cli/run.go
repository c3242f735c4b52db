package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"context_bench/internal/bench"
	"context_bench/internal/llm"
	"context_bench/internal/mcp"
)

type runOptions struct {
	pkg         string
	scenario    string
	scenarios   string
	mode        string
	config      string
	allConfigs  bool
	allPackages bool
	runID       string
	maxWorkers  int
	timeout     int
	verbose     bool
	outputDir   string
}

func (a *app) runCommand() *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scenarios against one or more MCP configs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.pkg, "package", "", "run all scenarios in a package")
	f.StringVar(&o.scenario, "scenario", "", "single scenario id (package:scenario)")
	f.StringVar(&o.scenarios, "scenarios", "", "comma-separated scenario ids")
	f.StringVar(&o.mode, "mode", string(bench.ModeAgent), "execution mode: oneshot or agent")
	f.StringVar(&o.config, "config", "", "MCP config to use (baseline, context7, nia, deepcon, exa)")
	f.BoolVar(&o.allConfigs, "all-configs", false, "run with every available config")
	f.BoolVar(&o.allPackages, "all-packages", false, "run every package")
	f.StringVar(&o.runID, "run-id", "", "identifier of this run (default run-YYYY-MM-DD-HHMM)")
	f.IntVar(&o.maxWorkers, "max-workers", 0, "parallel execution limit (default from bench.yaml)")
	f.IntVar(&o.timeout, "timeout", 0, "timeout per scenario in seconds (default from bench.yaml)")
	f.BoolVar(&o.verbose, "verbose", false, "echo every run log line")
	f.StringVar(&o.outputDir, "output-dir", "", "reports directory (default from bench.yaml)")
	return cmd
}

func (a *app) scenarioIDs(loader *bench.Loader, o runOptions) ([]string, error) {
	switch {
	case o.pkg != "":
		return loader.PackageScenarios(o.pkg)
	case o.allPackages:
		return loader.ScenarioIDs(), nil
	case o.scenario != "":
		return []string{o.scenario}, nil
	case o.scenarios != "":
		var ids []string
		for _, id := range strings.Split(o.scenarios, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}
	return loader.ScenarioIDs(), nil
}

func (a *app) configNames(o runOptions) ([]string, error) {
	if o.config != "" {
		return []string{o.config}, nil
	}
	return mcp.ListConfigs(a.bench.Paths.Configs)
}

// judgeFactory opens judges through OpenRouter.
func (a *app) judgeFactory() bench.ModelFactory {
	return func(ctx context.Context, name string) (model.BaseChatModel, error) {
		cfg := a.env.LLMConfig
		cfg.Provider = llm.ProviderOpenRouter
		mc := llm.FromConfig(cfg).WithModel(name)
		if a.bench.Evaluation.BaseURL != "" {
			mc.BaseURL = a.bench.Evaluation.BaseURL
		}
		return llm.NewChatModel(ctx, mc)
	}
}

func (a *app) harness(ctx context.Context, mode bench.Mode, reports string) (*bench.Harness, error) {
	paths := a.bench.Paths
	loader := bench.NewLoader(paths.Scenarios)

	ev := bench.NewEvaluator(a.bench.Evaluation.Models, a.judgeFactory(), loader)
	if n := a.bench.Evaluation.MaxRetries; n > 0 {
		ev.MaxAttempts = n
	}
	if rps := a.bench.Evaluation.RequestsPerSec; rps > 0 {
		ev.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	h := &bench.Harness{
		Paths: bench.Paths{
			Configs:   paths.Configs,
			Reports:   reports,
			Logs:      paths.Logs,
			Workspace: paths.Workspace,
		},
		Loader:    loader,
		Evaluator: ev,
		Counter:   a.count,
		Out:       a.out,
	}
	if mode == bench.ModeAgent {
		m, err := llm.NewChatModel(ctx, llm.FromConfig(a.env.LLMConfig))
		if err != nil {
			return nil, &ExitError{Code: ExitConfigError, Err: fmt.Errorf("agent model: %w", err)}
		}
		h.AgentModel = m
	}
	return h, nil
}

func (a *app) run(ctx context.Context, o runOptions) error {
	if o.config == "" && !o.allConfigs {
		return configError("either --config or --all-configs must be specified")
	}
	mode, err := bench.ParseMode(o.mode)
	if err != nil {
		return configError("%v", err)
	}

	reports := a.bench.Paths.Reports
	if o.outputDir != "" {
		reports = o.outputDir
	}
	h, err := a.harness(ctx, mode, reports)
	if err != nil {
		return err
	}

	ids, err := a.scenarioIDs(h.Loader, o)
	if err != nil {
		return configError("%v", err)
	}
	if len(ids) == 0 {
		return configError("no scenarios to run")
	}
	configs, err := a.configNames(o)
	if err != nil {
		return configError("%v", err)
	}
	if len(configs) == 0 {
		return configError("no configs to run")
	}

	runID := o.runID
	if runID == "" {
		runID = bench.NewRunID(time.Now())
	}
	timeout := o.timeout
	if timeout <= 0 {
		timeout = a.bench.Defaults.TimeoutSec
	}
	workers := o.maxWorkers
	if workers <= 0 {
		workers = a.bench.Defaults.MaxWorkers
	}

	tasks, err := h.NewTasks(ids, configs, mode, runID, time.Duration(timeout)*time.Second, o.verbose)
	if err != nil {
		return configError("%v", err)
	}

	rule := strings.Repeat("━", 80)
	fmt.Fprintln(a.out, "\nContext Bench v1.0.0")
	fmt.Fprintln(a.out, rule)
	fmt.Fprintf(a.out, "Run ID: %s\n", runID)
	fmt.Fprintf(a.out, "Mode: %s\n", mode)
	fmt.Fprintf(a.out, "Scenarios: %s\n", strings.Join(ids, ", "))
	fmt.Fprintf(a.out, "Configs: %s\n", strings.Join(configs, ", "))
	parallel := workers > 1 && len(tasks) > 1
	if parallel {
		fmt.Fprintf(a.out, "Workers: %d (parallel mode)\n", workers)
	}
	fmt.Fprintln(a.out, rule)

	var results []bench.TaskResult
	if parallel {
		results = h.RunParallel(ctx, tasks, workers)
		bench.PrintParallelSummary(a.out, results)
	} else {
		results = h.RunSequential(ctx, tasks)
	}
	if err := ctx.Err(); err != nil {
		return &ExitError{Code: ExitInterrupted, Err: err}
	}

	failed := len(results) < len(tasks)
	for _, r := range results {
		if !r.Success {
			failed = true
		}
	}

	if len(ids) > 1 || len(configs) > 1 {
		if err := a.summarize(h, runID, configs, ids, reports); err != nil {
			return err
		}
	} else if len(results) == 1 && results[0].Report != nil {
		bench.PrintReport(a.out, results[0].Report, reports)
	}

	if failed {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

func (a *app) summarize(h *bench.Harness, runID string, configs, ids []string, reports string) error {
	fmt.Fprintln(a.out, "\n▶ Generating summary report")
	s, err := bench.BuildSummary(runID, configs, ids, reports, time.Now())
	if err != nil {
		return err
	}
	if _, err := bench.SaveSummary(reports, s); err != nil {
		return err
	}
	bench.PrintSummary(a.out, s)

	if len(configs) > 1 {
		path, err := bench.SaveBenchmarkSummary(h.Paths.Workspace, s, reports)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Benchmark summary: %s\n", path)
	}
	for _, cfg := range configs {
		path, err := bench.SaveConfigSummary(h.Paths.Workspace, s, cfg, reports)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s summary: %s\n", cfg, path)
	}
	return nil
}
