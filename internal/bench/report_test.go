package bench

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluated(id, cfg string, score int, pass bool) *Report {
	r := &Report{
		ScenarioID: id,
		Config:     cfg,
		RunID:      "run-1",
		Mode:       ModeOneshot,
		Total:      1,
		Evaluation: &Evaluation{
			Mode:       ModeOneshot,
			Models:     []Verdict{{Model: "judge-a", OverallScore: score, Confidence: "high", Reasoning: "because"}},
			Aggregated: Aggregate{FinalScore: score, Pass: pass, CompletenessRate: 1, RelevanceRate: 1},
		},
		OneshotStats:   &OneshotStats{ToolCalls: 1, ToolUsed: "get-library-docs", ServerUsed: "context7"},
		TotalElapsedMS: 2500,
	}
	if pass {
		r.Passed, r.PassRate = 1, 1
	}
	return r
}

func TestSaveAndLoadReport(t *testing.T) {
	dir := t.TempDir()
	r := evaluated("autogen:streaming_tools", "context7", 4, true)

	path, err := SaveReport(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "context7", "autogen:streaming_tools.json"), path)

	got, err := LoadReport(dir, "context7", "autogen:streaming_tools")
	require.NoError(t, err)
	assert.Equal(t, r, got)

	got, err = LoadReport(dir, "nia", "autogen:streaming_tools")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func summaryFixture(t *testing.T) (*Summary, string) {
	t.Helper()
	dir := t.TempDir()
	for _, r := range []*Report{
		evaluated("a:one", "context7", 4, true),
		evaluated("a:two", "context7", 2, false),
		evaluated("a:one", "nia", 5, true),
		{ScenarioID: "a:two", Config: "nia", Total: 1, EvaluationError: &ErrorInfo{Message: "judge timeout\nstack"}},
	} {
		_, err := SaveReport(dir, r)
		require.NoError(t, err)
	}
	s, err := BuildSummary("run-1", []string{"context7", "nia", "exa"}, []string{"a:one", "a:two"}, dir, time.Unix(0, 0))
	require.NoError(t, err)
	return s, dir
}

func TestBuildSummary(t *testing.T) {
	s, dir := summaryFixture(t)

	assert.Equal(t, ConfigSummary{PassedScenarios: 1, TotalScenarios: 2, PassRate: 0.5, TotalTestCases: 2, PassedTestCases: 1}, s.Configs["context7"])
	assert.Equal(t, ConfigSummary{}, s.Configs["exa"])
	assert.Equal(t, Count{Passed: 0, Total: 1}, s.Scenarios[1].Configs["nia"])

	path, err := SaveSummary(dir, s)
	require.NoError(t, err)
	assert.FileExists(t, path)

	var out bytes.Buffer
	PrintSummary(&out, s)
	assert.Contains(t, out.String(), "SUMMARY REPORT")
	assert.Contains(t, out.String(), "context7: 1/2 scenarios (50.0%)")
	assert.Contains(t, out.String(), "a:one: context7:✅ nia:✅")
}

func TestBenchmarkSummaryMarkdown(t *testing.T) {
	s, dir := summaryFixture(t)
	md := BenchmarkSummaryMarkdown(s, dir)

	assert.Contains(t, md, "| Total Scenario Runs | 2/6 (33.3%) |")
	assert.Contains(t, md, "| a:one | ✅ 1/1 | ✅ 1/1 | ➖ |")
	assert.Contains(t, md, "## ❌ Failure Summary")
	assert.Contains(t, md, "| a:two | nia | ❌ FAIL | judge timeout |")
	assert.Contains(t, md, "| ⚠️ **context7** | 1/2 | 50.0% | 3.0 |")
}

func TestConfigSummaryMarkdown(t *testing.T) {
	s, dir := summaryFixture(t)

	md, err := ConfigSummaryMarkdown(s, "context7", dir)
	require.NoError(t, err)
	assert.Contains(t, md, "# 🎯 CONTEXT7 Results")
	assert.Contains(t, md, "| **Status** | ⚠️ PARTIALLY PASSED |")
	assert.Contains(t, md, "#### a:two")

	md, err = ConfigSummaryMarkdown(s, "exa", dir)
	require.NoError(t, err)
	assert.Contains(t, md, "❌ MOSTLY FAILED")

	_, err = ConfigSummaryMarkdown(s, "deepcon", dir)
	assert.Error(t, err)

	ws := t.TempDir()
	path, err := SaveConfigSummary(ws, s, "nia", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "run-1", "nia", "nia_result.md"), path)

	_, _, err = AppendTokenStats(path, []TokenCount{{"a:one", 1200}})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "| a:one | 1,200 |")
}

func TestFinalResultMarkdown(t *testing.T) {
	md := FinalResultMarkdown(evaluated("a:one", "context7", 4, true), time.Unix(0, 0))
	assert.Contains(t, md, "## 📊 Overall Status: ✅ **PASSED**")
	assert.Contains(t, md, "- **MCP Tool**: get-library-docs")
	assert.Contains(t, md, "- **Evaluation Score**: 4/5")
	assert.Contains(t, md, "| judge-a | 4/5 |")

	md = FinalResultMarkdown(&Report{ScenarioID: "a:two", EvaluationError: &ErrorInfo{Message: "boom"}}, time.Unix(0, 0))
	assert.Contains(t, md, "❌ **FAILED**")
	assert.Contains(t, md, "## ⚠️ Evaluation Error")
}

func TestSaveComparison(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "run-1", "oneshot", "nia", "a:one", "evaluation_oneshot.json"),
		`{"mode":"oneshot","models":[],"aggregated":{"final_score":2},"consensus":true}`)
	_, _, err := SaveComparison(ws, "run-1", "nia", "a:one")
	assert.ErrorIs(t, err, ErrNoResult)

	writeFile(t, filepath.Join(ws, "run-1", "agent", "nia", "a:one", "evaluation_agent.json"),
		`{"mode":"agent","models":[],"aggregated":{"final_score":5,"pass":true},"consensus":true}`)
	c, path, err := SaveComparison(ws, "run-1", "nia", "a:one")
	require.NoError(t, err)
	assert.Equal(t, "agent", c.Winner)
	assert.FileExists(t, path)
}
