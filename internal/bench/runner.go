package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"golang.org/x/sync/errgroup"

	"context_bench/internal/logger"
	"context_bench/internal/mcp"
)

// Paths are the directories a benchmark run reads and writes.
type Paths struct {
	Configs   string
	Reports   string
	Logs      string
	Workspace string
}

// ConnectFunc opens the MCP servers of a resolved config.
type ConnectFunc func(ctx context.Context, cfg *mcp.Config) (*mcp.Manager, error)

// Connect dials every server of cfg. It fails only when servers are
// configured and none of them connects.
func Connect(ctx context.Context, cfg *mcp.Config) (*mcp.Manager, error) {
	m := mcp.NewManager(cfg.MCPServers)
	failed := m.ConnectAll(ctx)
	if len(cfg.MCPServers) > 0 && len(m.Connected()) == 0 {
		msgs := make([]string, 0, len(failed))
		for name, err := range failed {
			msgs = append(msgs, name+": "+err.Error())
		}
		_ = m.Close()
		return nil, fmt.Errorf("no MCP server connected for config %s: %s", cfg.ConfigName, strings.Join(msgs, "; "))
	}
	return m, nil
}

// Harness runs scenarios against MCP configs and records their reports.
type Harness struct {
	Paths     Paths
	Loader    *Loader
	Evaluator *Evaluator
	// AgentModel answers queries in agent mode.
	AgentModel model.ToolCallingChatModel
	Connect    ConnectFunc
	Lookup     mcp.LookupFunc
	Counter    TokenCounter
	Out        io.Writer
}

// Task is one scenario run with one config.
type Task struct {
	Scenario *Scenario
	Config   *mcp.Config
	Mode     Mode
	RunID    string
	Timeout  time.Duration
	Verbose  bool
	// Parallel suppresses the per-step console progress.
	Parallel bool
	// Shared is reused instead of connecting a manager for this task.
	Shared *mcp.Manager
}

// TaskResult is the outcome of one task in a batch.
type TaskResult struct {
	ScenarioID string
	Config     string
	Success    bool
	Report     *Report
	Err        error
}

// NewRunID returns run-YYYY-MM-DD-HHMM in UTC.
func NewRunID(now time.Time) string {
	return "run-" + now.UTC().Format("2006-01-02-1504")
}

func (h *Harness) out() io.Writer {
	if h.Out == nil {
		return io.Discard
	}
	return h.Out
}

func (h *Harness) lookup() mcp.LookupFunc {
	if h.Lookup == nil {
		return os.LookupEnv
	}
	return h.Lookup
}

func (h *Harness) connect() ConnectFunc {
	if h.Connect == nil {
		return Connect
	}
	return h.Connect
}

// Workspace is workspace/<run>/<mode>/<config>/<scenario>.
func (h *Harness) Workspace(t *Task) string {
	return filepath.Join(h.Paths.Workspace, t.RunID, string(t.Mode), t.Config.ConfigName, t.Scenario.FullID())
}

// NewTasks builds one task per config and scenario, configs outermost.
func (h *Harness) NewTasks(scenarioIDs, configNames []string, mode Mode, runID string, timeout time.Duration, verbose bool) ([]*Task, error) {
	var tasks []*Task
	for _, name := range configNames {
		cfg, err := mcp.LoadConfig(h.Paths.Configs, name)
		if err != nil {
			return nil, err
		}
		for _, id := range scenarioIDs {
			s, err := h.Loader.LoadScenario(id)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, &Task{Scenario: s, Config: cfg, Mode: mode, RunID: runID, Timeout: timeout, Verbose: verbose})
		}
	}
	return tasks, nil
}

func (h *Harness) progress(t *Task, step string) {
	if t.Verbose || t.Parallel {
		return
	}
	msg := "    " + step + "..."
	fmt.Fprintf(h.out(), "\r%-80s", msg)
}

// RunScenario runs one task end to end. The report is saved even when the
// run fails, in which case the error is returned too.
func (h *Harness) RunScenario(ctx context.Context, t *Task) (*Report, error) {
	id := t.Scenario.FullID()
	logDir := logger.ScenarioLogDir(h.Paths.Logs, t.RunID, string(t.Mode), t.Config.ConfigName, id)
	log, err := logger.NewRunLogger(logDir, "run_instance.log", t.Verbose)
	if err != nil {
		return nil, err
	}
	defer log.Close()

	start := time.Now()
	log.Info(rule)
	log.Infof("Run ID: %s", t.RunID)
	log.Infof("Scenario: %s - %s", id, t.Scenario.Name)
	log.Infof("Config: %s - %s", t.Config.ConfigName, t.Config.Description)
	log.Info(rule)

	r, err := h.runScenario(ctx, t, log, start)
	if err != nil {
		log.Error(rule)
		log.Error("ERROR: " + err.Error())
		log.Error(rule)
		failed := &Report{
			ScenarioID:     id,
			Config:         t.Config.ConfigName,
			RunID:          t.RunID,
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			Mode:           t.Mode,
			Total:          1,
			TotalElapsedMS: time.Since(start).Milliseconds(),
		}
		if _, serr := SaveReport(h.Paths.Reports, failed); serr != nil {
			log.Error("save failure report: " + serr.Error())
		}
		return failed, err
	}
	return r, nil
}

func (h *Harness) runScenario(ctx context.Context, t *Task, log *logger.RunLogger, start time.Time) (*Report, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	s := t.Scenario
	workspace := h.Workspace(t)

	h.progress(t, "[1/8] Loading")
	log.Info("[1/8] Loading scenario specification... ✓")

	h.progress(t, "[2/8] Validating env")
	log.Info("[2/8] Validating environment variables...")
	if missing := MissingEnv(s.Package, h.lookup()); len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	log.Info("[2/8] Validating environment variables... ✓")

	h.progress(t, "[3/8] Initializing workspace")
	log.Info("[3/8] Initializing workspace...")
	log.Marker(logger.MarkerWorkspaceInit)
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	log.Infof("Workspace: %s", workspace)
	log.Marker(logger.MarkerWorkspaceReady)
	log.Info("[3/8] Initializing workspace... ✓")

	h.progress(t, "[4/8] Applying MCP config")
	log.Info("[4/8] Applying MCP configuration...")
	log.Marker(logger.MarkerMCPConfigStart)
	if missing := mcp.MissingEnv(t.Config, h.lookup()); len(missing) > 0 {
		log.Marker(logger.MarkerMCPConfigFail)
		return nil, fmt.Errorf("config %s is missing environment variables: %s", t.Config.ConfigName, strings.Join(missing, ", "))
	}
	cfg, err := mcp.Resolve(t.Config, h.lookup())
	if err != nil {
		log.Marker(logger.MarkerMCPConfigFail)
		return nil, err
	}
	servers := cfg.ServerNames()
	log.Infof("MCP servers: %s", serverList(servers))
	manager := t.Shared
	if manager == nil {
		manager, err = h.connect()(ctx, cfg)
		if err != nil {
			log.Marker(logger.MarkerMCPConfigFail)
			return nil, err
		}
		defer manager.Close()
	}
	log.Marker(logger.MarkerMCPConfigApplied)
	log.Info("[4/8] Applying MCP configuration... ✓")

	r := &Report{
		ScenarioID: s.FullID(),
		Config:     cfg.ConfigName,
		RunID:      t.RunID,
		Mode:       t.Mode,
	}

	switch t.Mode {
	case ModeOneshot:
		h.progress(t, "[5/8] Running oneshot")
		log.Info("[5/8] Running oneshot mode (single MCP tool call)...")
		st, err := RunOneshot(ctx, s, cfg, manager, workspace, log)
		if err != nil {
			return nil, err
		}
		r.OneshotStats = st
		log.Infof("Oneshot: %s on %s", st.ToolUsed, st.ServerUsed)
		log.Info("[5/8] Running oneshot... ✓")
	default:
		h.progress(t, "[5/8] Invoking agent")
		log.Info("[5/8] Invoking agent (this may take a while)...")
		if h.AgentModel == nil {
			return nil, errors.New("agent mode needs a chat model")
		}
		var tools []tool.BaseTool
		if len(servers) > 0 {
			tools, err = mcp.ManagerTools(ctx, manager)
			if err != nil {
				return nil, err
			}
		}
		ar := &AgentRunner{Model: h.AgentModel, Tools: tools, Counter: h.Counter}
		res, err := ar.Run(ctx, s, cfg.ConfigName, servers, workspace, log)
		if err != nil {
			return nil, err
		}
		r.AgentStats = &res.Stats
		r.MCPStats = res.MCP
		log.Infof("Agent turns: %d, tool calls: %d", res.Stats.Turns, res.Stats.ToolCalls)
		log.Info("[5/8] Invoking agent... ✓")
	}
	log.Info("[6/8] Skipping service build")
	log.Info("[7/8] Skipping test cases")

	h.progress(t, "[7.5/8] Evaluating result")
	log.Info("[7.5/8] Evaluating result against oracle...")
	log.Marker(logger.MarkerValidationStart)
	if h.Evaluator == nil {
		r.EvaluationError = &ErrorInfo{Message: "no evaluator configured"}
	} else if ev, err := h.Evaluator.Evaluate(ctx, s, t.Mode, workspace, log); err != nil {
		log.Warn("Evaluation failed: " + err.Error())
		r.EvaluationError = &ErrorInfo{Message: err.Error()}
	} else {
		r.Evaluation = ev
		log.Infof("Evaluation score: %d/5 (pass: %t)", ev.Aggregated.FinalScore, ev.Aggregated.Pass)
		log.Info("[7.5/8] Evaluation complete ✓")
	}

	h.progress(t, "[8/8] Generating report")
	log.Info("[8/8] Generating report...")
	log.Marker(logger.MarkerReportStart)
	if r.Evaluation != nil {
		r.Total = 1
		if r.Evaluation.Aggregated.Pass {
			r.Passed = 1
			r.PassRate = 1
			log.Marker(logger.MarkerValidationPass)
		} else {
			log.Marker(logger.MarkerValidationFail)
		}
	} else {
		log.Marker(logger.MarkerValidationFail)
	}
	r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	r.TotalElapsedMS = time.Since(start).Milliseconds()

	path, err := SaveReport(h.Paths.Reports, r)
	if err != nil {
		return nil, err
	}
	final, err := SaveFinalResult(workspace, r)
	if err != nil {
		return nil, err
	}
	log.Infof("✅ Final result saved: %s", final)
	log.Marker(logger.MarkerReportSaved)
	log.Infof("Report saved: %s", path)
	log.Info("[8/8] Generating report... ✓")

	log.Info(rule)
	log.Infof("Results: %d/%d passed (%s)", r.Passed, r.Total, pct(r.PassRate))
	log.Infof("Elapsed: %s", secs(r.TotalElapsedMS, 1))
	log.Info(rule)
	return r, nil
}

// RunSequential runs tasks one after another, printing a line per result.
func (h *Harness) RunSequential(ctx context.Context, tasks []*Task) []TaskResult {
	results := make([]TaskResult, 0, len(tasks))
	lastConfig := ""
	for _, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		if t.Config.ConfigName != lastConfig {
			lastConfig = t.Config.ConfigName
			fmt.Fprintf(h.out(), "\n▶ Running config: %s\n\n", lastConfig)
		}
		fmt.Fprintf(h.out(), "  ▶ Scenario: %s\n", t.Scenario.FullID())

		r, err := h.RunScenario(ctx, t)
		if !t.Verbose {
			fmt.Fprintf(h.out(), "\r%80s\r", "")
		}
		res := TaskResult{ScenarioID: t.Scenario.FullID(), Config: t.Config.ConfigName, Report: r, Err: err}
		switch {
		case err != nil:
			fmt.Fprintf(h.out(), "    ✗ ERROR: %v\n\n", err)
		case r.PassRate < 1:
			fmt.Fprintf(h.out(), "    ✗ FAIL: %d/%d passed\n\n", r.Passed, r.Total)
		default:
			res.Success = true
			fmt.Fprintf(h.out(), "    ✓ PASS: %d/%d passed\n\n", r.Passed, r.Total)
		}
		results = append(results, res)
	}
	return results
}

// RunParallel runs tasks on up to maxWorkers goroutines. Oneshot tasks share
// one MCP manager per config. Results keep the order of tasks.
func (h *Harness) RunParallel(ctx context.Context, tasks []*Task, maxWorkers int) []TaskResult {
	shared := map[string]*mcp.Manager{}
	for _, t := range tasks {
		t.Parallel = true
		if t.Mode != ModeOneshot {
			continue
		}
		name := t.Config.ConfigName
		m, seen := shared[name]
		if !seen {
			m = h.sharedManager(ctx, t.Config, countMode(tasks, name, ModeOneshot))
			shared[name] = m
		}
		t.Shared = m
	}
	defer func() {
		for name, m := range shared {
			if m == nil {
				continue
			}
			fmt.Fprintf(h.out(), "\nDisconnecting shared MCP client for %s...\n", name)
			if err := m.Close(); err != nil {
				fmt.Fprintf(h.out(), "⚠ Failed to disconnect MCP client: %v\n", err)
			} else {
				fmt.Fprintln(h.out(), "✓ Shared MCP client disconnected")
			}
		}
	}()

	results := make([]TaskResult, len(tasks))
	var (
		mu        sync.Mutex
		completed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(maxWorkers, 1))
	for i, t := range tasks {
		g.Go(func() error {
			if t.Verbose {
				fmt.Fprintf(h.out(), "[Worker %d] Starting: %s (%s)\n", i, t.Scenario.FullID(), t.Config.ConfigName)
			}
			r, err := h.RunScenario(gctx, t)
			res := TaskResult{ScenarioID: t.Scenario.FullID(), Config: t.Config.ConfigName, Report: r, Err: err}
			res.Success = err == nil && r.PassRate == 1

			mu.Lock()
			completed++
			switch {
			case err != nil:
				fmt.Fprintf(h.out(), "[%d/%d] ✗ %s (%s): ERROR - %v\n", completed, len(tasks), res.ScenarioID, res.Config, err)
			case res.Success:
				fmt.Fprintf(h.out(), "[%d/%d] ✅ %s (%s): %d/%d passed (PASSED)\n", completed, len(tasks), res.ScenarioID, res.Config, r.Passed, r.Total)
			default:
				fmt.Fprintf(h.out(), "[%d/%d] ❌ %s (%s): %d/%d passed (FAILED)\n", completed, len(tasks), res.ScenarioID, res.Config, r.Passed, r.Total)
			}
			mu.Unlock()

			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func countMode(tasks []*Task, config string, mode Mode) int {
	n := 0
	for _, t := range tasks {
		if t.Config.ConfigName == config && t.Mode == mode {
			n++
		}
	}
	return n
}

// sharedManager connects the config once for its oneshot tasks. A nil
// manager makes each task connect on its own.
func (h *Harness) sharedManager(ctx context.Context, cfg *mcp.Config, n int) *mcp.Manager {
	resolved, err := mcp.Resolve(cfg, h.lookup())
	if err != nil {
		fmt.Fprintf(h.out(), "✗ Failed to resolve MCP config %s: %v\n", cfg.ConfigName, err)
		return nil
	}
	fmt.Fprintf(h.out(), "Creating shared MCP client for %d oneshot scenario(s)...\n", n)
	m, err := h.connect()(ctx, resolved)
	if err != nil {
		fmt.Fprintf(h.out(), "✗ Failed to connect to MCP servers: %v\n", err)
		return nil
	}
	connected := m.Connected()
	fmt.Fprintf(h.out(), "✓ Connected to %d MCP servers: %s\n", len(connected), strings.Join(connected, ", "))
	return m
}

// PrintParallelSummary writes the batch outcome and lists failures.
func PrintParallelSummary(w io.Writer, results []TaskResult) {
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "PARALLEL EXECUTION SUMMARY")
	fmt.Fprintln(w, rule+"\n")

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		}
	}
	fmt.Fprintf(w, "Total scenarios: %d\n", len(results))
	fmt.Fprintf(w, "Successful: %d\n", ok)
	if failed := len(results) - ok; failed > 0 {
		fmt.Fprintf(w, "Failed: %d\n\nFailed scenarios:\n", failed)
		for _, r := range results {
			if r.Success {
				continue
			}
			reason := "Evaluation failed"
			if r.Err != nil {
				reason = r.Err.Error()
			}
			fmt.Fprintf(w, "  • %s (%s): %s\n", r.ScenarioID, r.Config, reason)
		}
	}
	fmt.Fprintln(w, "\n"+rule+"\n")
}
