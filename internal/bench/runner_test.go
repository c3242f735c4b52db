package bench

import (
	"bytes"
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/llm/llmtest"
	"context_bench/internal/mcp"
)

const niaConfig = `{
  "config_name": "nia",
  "description": "NIA package search",
  "mcp_servers": {"nia": {"url": "${NIA_URL}"}}
}`

type harnessFixture struct {
	h       *Harness
	out     *bytes.Buffer
	dials   *atomic.Int32
	root    string
	verdict string
}

func newHarness(t *testing.T, env map[string]string) *harnessFixture {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "configs", "nia.json"), niaConfig)

	f := &harnessFixture{out: &bytes.Buffer{}, dials: &atomic.Int32{}, root: root, verdict: passVerdict}
	judge := llmtest.NewResponder(func([]*schema.Message) *schema.Message { return llmtest.Text(f.verdict) })
	e := fastEvaluator(map[string]*llmtest.ScriptedModel{"judge-a": judge}, nil)

	f.h = &Harness{
		Paths: Paths{
			Configs:   filepath.Join(root, "configs"),
			Reports:   filepath.Join(root, "reports"),
			Logs:      filepath.Join(root, "logs"),
			Workspace: filepath.Join(root, "workspace"),
		},
		Loader:    NewLoader(scenarioDir(t)),
		Evaluator: e,
		Connect: func(ctx context.Context, cfg *mcp.Config) (*mcp.Manager, error) {
			f.dials.Add(1)
			assert.Equal(t, "http://nia.test/mcp", cfg.MCPServers["nia"].URL)
			m := mcp.NewManager(nil)
			m.Add(docsServer(t, "nia"))
			return m, nil
		},
		Lookup: envFrom(env),
		Out:    f.out,
	}
	return f
}

var fullEnv = map[string]string{"OPENAI_API_KEY": "sk-test", "NIA_URL": "http://nia.test/mcp"}

func TestNewRunID(t *testing.T) {
	assert.Equal(t, "run-2025-03-04-0506", NewRunID(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)))
}

func TestRunScenarioOneshot(t *testing.T) {
	f := newHarness(t, fullEnv)
	tasks, err := f.h.NewTasks([]string{"autogen:streaming_tools"}, []string{"nia"}, ModeOneshot, "run-1", time.Minute, false)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	r, err := f.h.RunScenario(context.Background(), tasks[0])
	require.NoError(t, err)
	assert.Equal(t, 1, r.Passed)
	assert.Equal(t, 1.0, r.PassRate)
	assert.Equal(t, "nia_package_search_hybrid", r.OneshotStats.ToolUsed)
	require.NotNil(t, r.Evaluation)

	ws := f.h.Workspace(tasks[0])
	assert.Equal(t, filepath.Join(f.root, "workspace", "run-1", "oneshot", "nia", "autogen:streaming_tools"), ws)
	assert.FileExists(t, filepath.Join(ws, OneshotResultFile))
	assert.FileExists(t, filepath.Join(ws, "final_result.md"))
	assert.FileExists(t, filepath.Join(ws, "evaluation_oneshot.json"))
	assert.FileExists(t, filepath.Join(f.root, "logs", "run_evaluation", "run-1", "oneshot", "nia", "autogen:streaming_tools", "run_instance.log"))

	saved, err := LoadReport(f.h.Paths.Reports, "nia", "autogen:streaming_tools")
	require.NoError(t, err)
	assert.Equal(t, r.Passed, saved.Passed)
}

func TestRunScenarioRecordsEvaluationError(t *testing.T) {
	f := newHarness(t, fullEnv)
	f.verdict = "no verdict"
	tasks, err := f.h.NewTasks([]string{"autogen:streaming_tools"}, []string{"nia"}, ModeOneshot, "run-1", 0, false)
	require.NoError(t, err)

	r, err := f.h.RunScenario(context.Background(), tasks[0])
	require.NoError(t, err)
	assert.Zero(t, r.Passed)
	assert.Zero(t, r.Total)
	require.NotNil(t, r.EvaluationError)
	assert.Contains(t, r.EvaluationError.Message, "no JSON object")
}

func TestRunScenarioMissingEnv(t *testing.T) {
	f := newHarness(t, map[string]string{"NIA_URL": "http://nia.test/mcp"})
	tasks, err := f.h.NewTasks([]string{"autogen:streaming_tools"}, []string{"nia"}, ModeOneshot, "run-1", 0, false)
	require.NoError(t, err)

	r, err := f.h.RunScenario(context.Background(), tasks[0])
	assert.ErrorContains(t, err, "missing required environment variables: OPENAI_API_KEY")
	require.NotNil(t, r)
	assert.Equal(t, 1, r.Total)

	saved, err := LoadReport(f.h.Paths.Reports, "nia", "autogen:streaming_tools")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Zero(t, saved.Passed)
	assert.Zero(t, f.dials.Load())
}

func TestRunScenarioAgent(t *testing.T) {
	f := newHarness(t, fullEnv)
	f.h.AgentModel = llmtest.New(
		llmtest.ToolCall("c1", "nia_search_documentation", `{"query":"run_stream"}`),
		llmtest.Text("```python\nawait Console(team.run_stream(task=\"weather\"))\n```"),
	)
	tasks, err := f.h.NewTasks([]string{"autogen:streaming_tools"}, []string{"nia"}, ModeAgent, "run-1", 0, true)
	require.NoError(t, err)

	r, err := f.h.RunScenario(context.Background(), tasks[0])
	require.NoError(t, err)
	require.NotNil(t, r.AgentStats)
	assert.Equal(t, 1, r.AgentStats.ToolCalls)
	require.NotNil(t, r.MCPStats)
	assert.Equal(t, 1, r.MCPStats.TotalCalls)
	assert.Equal(t, 1, r.Passed)
	assert.FileExists(t, filepath.Join(f.h.Workspace(tasks[0]), MCPResultsDir, MCPSummaryFile))
}

func TestRunParallelSharesManager(t *testing.T) {
	f := newHarness(t, fullEnv)
	ids := []string{"autogen:streaming_tools", "autogen:team_termination", "langgraph:hil_writer"}
	tasks, err := f.h.NewTasks(ids, []string{"nia"}, ModeOneshot, "run-2", 0, false)
	require.NoError(t, err)

	results := f.h.RunParallel(context.Background(), tasks, 2)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, ids[i], r.ScenarioID)
		assert.True(t, r.Success, r.ScenarioID)
	}
	assert.Equal(t, int32(1), f.dials.Load())
	assert.Contains(t, f.out.String(), "Creating shared MCP client for 3 oneshot scenario(s)...")
	assert.Contains(t, f.out.String(), "[3/3]")

	var out bytes.Buffer
	PrintParallelSummary(&out, append(results, TaskResult{ScenarioID: "x:y", Config: "nia"}))
	assert.Contains(t, out.String(), "PARALLEL EXECUTION SUMMARY")
	assert.Contains(t, out.String(), "Failed: 1")
	assert.Contains(t, out.String(), "• x:y (nia): Evaluation failed")
}

func TestRunSequential(t *testing.T) {
	f := newHarness(t, fullEnv)
	tasks, err := f.h.NewTasks([]string{"autogen:streaming_tools", "autogen:team_termination"}, []string{"nia"}, ModeOneshot, "run-3", 0, false)
	require.NoError(t, err)

	results := f.h.RunSequential(context.Background(), tasks)
	require.Len(t, results, 2)
	assert.True(t, results[1].Success)
	assert.Equal(t, int32(2), f.dials.Load())
	assert.Contains(t, f.out.String(), "▶ Running config: nia")
	assert.Contains(t, f.out.String(), "✓ PASS: 1/1 passed")
}
