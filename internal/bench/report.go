package bench

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var rule = strings.Repeat("━", 80)

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

func reportPath(dir, config, scenarioID string) string {
	return filepath.Join(dir, config, scenarioID+".json")
}

// SaveReport writes reports/<config>/<scenario>.json.
func SaveReport(dir string, r *Report) (string, error) {
	path := reportPath(dir, r.Config, r.ScenarioID)
	if err := writeJSON(path, r); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

// LoadReport reads a saved report. A missing report yields (nil, nil).
func LoadReport(dir, config, scenarioID string) (*Report, error) {
	data, err := os.ReadFile(reportPath(dir, config, scenarioID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var r Report
	if err := sonic.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s/%s: %w", config, scenarioID, err)
	}
	return &r, nil
}

// BuildSummary aggregates the saved reports of every config and scenario.
// Combinations without a report are left out.
func BuildSummary(runID string, configs, scenarioIDs []string, dir string, now time.Time) (*Summary, error) {
	s := &Summary{
		RunID:          runID,
		Timestamp:      now.UTC().Format(time.RFC3339),
		TotalScenarios: len(scenarioIDs),
		Configs:        map[string]ConfigSummary{},
		ConfigOrder:    append([]string(nil), configs...),
	}
	rows := make([]ScenarioSummary, len(scenarioIDs))
	for i, id := range scenarioIDs {
		rows[i] = ScenarioSummary{ScenarioID: id, Configs: map[string]Count{}}
	}

	for _, cfg := range configs {
		var cs ConfigSummary
		for i, id := range scenarioIDs {
			r, err := LoadReport(dir, cfg, id)
			if err != nil {
				return nil, err
			}
			if r == nil {
				continue
			}
			cs.TotalScenarios++
			cs.TotalTestCases += r.Total
			cs.PassedTestCases += r.Passed
			if r.PassRate == 1 {
				cs.PassedScenarios++
			}
			rows[i].Configs[cfg] = Count{Passed: r.Passed, Total: r.Total}
		}
		if cs.TotalScenarios > 0 {
			cs.PassRate = float64(cs.PassedScenarios) / float64(cs.TotalScenarios)
		}
		s.Configs[cfg] = cs
	}
	s.Scenarios = rows
	return s, nil
}

// SaveSummary writes reports/summary.json.
func SaveSummary(dir string, s *Summary) (string, error) {
	path := filepath.Join(dir, "summary.json")
	if err := writeJSON(path, s); err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}
	return path, nil
}

func pct(f float64) string { return fmt.Sprintf("%.1f%%", f*100) }

func secs(ms int64, prec int) string {
	return fmt.Sprintf("%.*fs", prec, float64(ms)/1000)
}

// PrintReport writes the one-scenario console block.
func PrintReport(w io.Writer, r *Report, reportsDir string) {
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintf(w, "Results: %d/%d passed (%s)\n", r.Passed, r.Total, pct(r.PassRate))
	fmt.Fprintf(w, "Report: %s\n", reportPath(reportsDir, r.Config, r.ScenarioID))
	fmt.Fprintf(w, "Elapsed: %s\n", secs(r.TotalElapsedMS, 1))
	fmt.Fprintln(w, rule+"\n")
}

// PrintSummary writes the multi-run console summary.
func PrintSummary(w io.Writer, s *Summary) {
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "SUMMARY REPORT")
	fmt.Fprintln(w, rule+"\n")
	fmt.Fprintf(w, "Run ID: %s\n", s.RunID)
	fmt.Fprintf(w, "Timestamp: %s\n", s.Timestamp)
	fmt.Fprintf(w, "Total Scenarios: %d\n\n", s.TotalScenarios)

	fmt.Fprintln(w, "Config Performance:")
	for _, cfg := range s.ConfigOrder {
		st := s.Configs[cfg]
		fmt.Fprintf(w, "  %s: %d/%d scenarios (%s)\n", cfg, st.PassedScenarios, st.TotalScenarios, pct(st.PassRate))
		fmt.Fprintf(w, "    Test cases: %d/%d\n", st.PassedTestCases, st.TotalTestCases)
	}

	if len(s.Scenarios) > 0 {
		fmt.Fprintln(w, "\nScenario Results:")
		for _, row := range s.Scenarios {
			var parts []string
			for _, cfg := range s.ConfigOrder {
				c, ok := row.Configs[cfg]
				if !ok {
					continue
				}
				icon := "❌"
				if c.Total > 0 && c.Passed == c.Total {
					icon = "✅"
				}
				parts = append(parts, cfg+":"+icon)
			}
			fmt.Fprintf(w, "  %s: %s\n", row.ScenarioID, strings.Join(parts, " "))
		}
	}
	fmt.Fprintln(w, "\n"+rule+"\n")
}

// FinalResultMarkdown renders workspace/final_result.md for one report.
func FinalResultMarkdown(r *Report, now time.Time) string {
	var b strings.Builder
	b.WriteString("# 🎯 Final Evaluation Result\n\n---\n\n")
	status := "❌ **FAILED**"
	if r.PassRate == 1 {
		status = "✅ **PASSED**"
	}
	fmt.Fprintf(&b, "## 📊 Overall Status: %s\n\n", status)

	b.WriteString("## 📝 Scenario Information\n\n")
	fmt.Fprintf(&b, "- **Scenario ID**: %s\n", r.ScenarioID)
	fmt.Fprintf(&b, "- **Configuration**: %s\n", r.Config)
	fmt.Fprintf(&b, "- **Mode**: %s\n", r.Mode)
	fmt.Fprintf(&b, "- **Run ID**: %s\n", r.RunID)
	fmt.Fprintf(&b, "- **Timestamp**: %s\n\n", r.Timestamp)

	b.WriteString("## ⚡ Performance Metrics\n\n")
	fmt.Fprintf(&b, "- **Total Elapsed Time**: %s\n", secs(r.TotalElapsedMS, 2))
	if r.AgentStats != nil {
		fmt.Fprintf(&b, "- **Agent Execution Time**: %s\n", secs(r.AgentStats.ElapsedMS, 2))
		fmt.Fprintf(&b, "- **Agent Turns**: %d\n", r.AgentStats.Turns)
		fmt.Fprintf(&b, "- **Agent Tool Calls**: %d\n", r.AgentStats.ToolCalls)
	}
	if r.OneshotStats != nil {
		fmt.Fprintf(&b, "- **MCP Server**: %s\n", r.OneshotStats.ServerUsed)
		fmt.Fprintf(&b, "- **MCP Tool**: %s\n", r.OneshotStats.ToolUsed)
	}
	if r.MCPStats != nil {
		fmt.Fprintf(&b, "- **MCP Total Calls**: %d\n", r.MCPStats.TotalCalls)
		fmt.Fprintf(&b, "- **MCP Total Time**: %s\n", secs(r.MCPStats.TotalElapsedMS, 2))
		fmt.Fprintf(&b, "- **MCP Total Input Tokens**: %d\n", r.MCPStats.TotalInputTokens)
		fmt.Fprintf(&b, "- **MCP Total Output Tokens**: %d\n", r.MCPStats.TotalOutputTokens)
	}
	b.WriteString("\n")

	b.WriteString("## 📋 Test Results Summary\n\n")
	switch {
	case r.EvaluationError != nil:
		b.WriteString("- **Evaluation**: ❌ **ERROR**\n")
		fmt.Fprintf(&b, "- **Error Message**: %s\n", r.EvaluationError.Message)
		b.WriteString("- **Overall Result**: FAILED ❌\n")
	case r.Evaluation != nil:
		agg := r.Evaluation.Aggregated
		fmt.Fprintf(&b, "- **Evaluation Score**: %d/5\n", agg.FinalScore)
		if agg.Pass {
			b.WriteString("- **Evaluation Status**: Passed ✅\n- **Overall Result**: PASSED ✅\n")
		} else {
			b.WriteString("- **Evaluation Status**: Failed ❌\n- **Overall Result**: FAILED ❌\n")
		}
	default:
		b.WriteString("- **Evaluation**: Not available\n- **Overall Result**: FAILED ❌\n")
	}
	b.WriteString("\n")

	if r.Evaluation != nil {
		b.WriteString("---\n\n## 🧑‍⚖️ Judge Verdicts\n\n")
		b.WriteString("| Model | Score | Completeness | Relevance | Confidence |\n")
		b.WriteString("|-------|-------|--------------|-----------|------------|\n")
		for _, v := range r.Evaluation.Models {
			fmt.Fprintf(&b, "| %s | %d/5 | %s | %s | %s |\n", v.Model, v.OverallScore, mark(v.Completeness), mark(v.Relevance), v.Confidence)
		}
		b.WriteString("\n")
		for _, v := range r.Evaluation.Models {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", v.Model, v.Reasoning)
		}
	}

	if r.EvaluationError != nil {
		b.WriteString("---\n\n## ⚠️ Evaluation Error\n\n")
		fmt.Fprintf(&b, "**Error Message:**\n```\n%s\n```\n\n", r.EvaluationError.Message)
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "📅 Generated at: %s\n", now.UTC().Format(time.RFC3339))
	return b.String()
}

// SaveFinalResult writes workspace/final_result.md.
func SaveFinalResult(workspace string, r *Report) (string, error) {
	path := filepath.Join(workspace, "final_result.md")
	return path, writeText(path, FinalResultMarkdown(r, time.Now()))
}

func passIcon(c Count) string {
	if c.Total > 0 && c.Passed == c.Total {
		return "✅"
	}
	return "❌"
}

func testCaseRate(passed, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(passed)/float64(total)*100)
}

// configStats gathers the timing columns of one config from saved reports.
type configStats struct {
	agentMS, mcpMS          int64
	agentRuns, mcpRuns      int
	mcpCalls, mcpIn, mcpOut int
	turns                   int
	fastestID, slowestID    string
	fastest, slowest        float64
	scoreSum, scored        int
}

func collectStats(s *Summary, cfg, dir string) configStats {
	st := configStats{fastestID: "-", slowestID: "-", fastest: math.Inf(1)}
	for _, row := range s.Scenarios {
		r, err := LoadReport(dir, cfg, row.ScenarioID)
		if err != nil || r == nil {
			continue
		}
		if r.Evaluation != nil {
			st.scoreSum += r.Evaluation.Aggregated.FinalScore
			st.scored++
		}
		if r.AgentStats != nil {
			st.agentMS += r.AgentStats.ElapsedMS
			st.agentRuns++
			st.turns += r.AgentStats.Turns
			t := float64(r.AgentStats.ElapsedMS) / 1000
			if t < st.fastest {
				st.fastest, st.fastestID = t, row.ScenarioID
			}
			if t > st.slowest {
				st.slowest, st.slowestID = t, row.ScenarioID
			}
		}
		if r.MCPStats != nil {
			st.mcpCalls += r.MCPStats.TotalCalls
			st.mcpMS += r.MCPStats.TotalElapsedMS
			st.mcpIn += r.MCPStats.TotalInputTokens
			st.mcpOut += r.MCPStats.TotalOutputTokens
			st.mcpRuns++
		}
	}
	return st
}

func avgOr(sum float64, n int, format, empty string) string {
	if n == 0 {
		return empty
	}
	return fmt.Sprintf(format, sum/float64(n))
}

// BenchmarkSummaryMarkdown compares every config of a run.
func BenchmarkSummaryMarkdown(s *Summary, dir string) string {
	var b strings.Builder
	b.WriteString("# 🎯 Benchmark Results\n\n")
	fmt.Fprintf(&b, "**Run ID**: %s | **Date**: %s\n\n---\n\n", s.RunID, s.Timestamp)

	totalRuns := s.TotalScenarios * len(s.ConfigOrder)
	totalPassed, cases, passedCases := 0, 0, 0
	for _, cfg := range s.ConfigOrder {
		st := s.Configs[cfg]
		totalPassed += st.PassedScenarios
		cases += st.TotalTestCases
		passedCases += st.PassedTestCases
	}
	overall := 0.0
	if totalRuns > 0 {
		overall = float64(totalPassed) / float64(totalRuns)
	}

	b.WriteString("## 📊 Overall Statistics\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Scenarios | %d |\n", s.TotalScenarios)
	fmt.Fprintf(&b, "| Configurations Tested | %d |\n", len(s.ConfigOrder))
	fmt.Fprintf(&b, "| Total Scenario Runs | %d/%d (%s) |\n", totalPassed, totalRuns, pct(overall))
	fmt.Fprintf(&b, "| Total Test Cases | %d/%d (%s%%) |\n\n", passedCases, cases, testCaseRate(passedCases, cases))

	b.WriteString("## 🔧 Configuration Performance\n\n")
	b.WriteString("| Config | Scenarios | Pass Rate | Avg Score | Agent Avg Time | MCP Avg Calls | MCP Avg Time | MCP Avg In | MCP Avg Out |\n")
	b.WriteString("|--------|-----------|-----------|-----------|----------------|---------------|--------------|------------|-------------|\n")
	stats := map[string]configStats{}
	for _, cfg := range s.ConfigOrder {
		cs := s.Configs[cfg]
		st := collectStats(s, cfg, dir)
		stats[cfg] = st
		icon := "❌"
		switch {
		case cs.PassRate >= 0.8:
			icon = "✅"
		case cs.PassRate >= 0.5:
			icon = "⚠️"
		}
		fmt.Fprintf(&b, "| %s **%s** | %d/%d | %s | %s | %s | %s | %s | %s | %s |\n",
			icon, cfg, cs.PassedScenarios, cs.TotalScenarios, pct(cs.PassRate),
			avgOr(float64(st.scoreSum), st.scored, "%.1f", "-"),
			avgOr(float64(st.agentMS)/1000, st.agentRuns, "%.1fs", "-"),
			avgOr(float64(st.mcpCalls), st.mcpRuns, "%.1f", "0"),
			avgOr(float64(st.mcpMS)/1000, st.mcpRuns, "%.1fs", "0"),
			avgOr(float64(st.mcpIn), st.mcpRuns, "%.0f", "0"),
			avgOr(float64(st.mcpOut), st.mcpRuns, "%.0f", "0"))
	}
	b.WriteString("\n")

	b.WriteString("## 📋 Results by Scenario\n\n")
	b.WriteString("| Scenario | " + strings.Join(s.ConfigOrder, " | ") + " |\n")
	b.WriteString("|----------|" + strings.Repeat("------|", len(s.ConfigOrder)) + "\n")
	for _, row := range s.Scenarios {
		cells := make([]string, 0, len(s.ConfigOrder))
		for _, cfg := range s.ConfigOrder {
			c, ok := row.Configs[cfg]
			if !ok {
				cells = append(cells, "➖")
				continue
			}
			cells = append(cells, fmt.Sprintf("%s %d/%d", passIcon(c), c.Passed, c.Total))
		}
		fmt.Fprintf(&b, "| %s | %s |\n", row.ScenarioID, strings.Join(cells, " | "))
	}
	b.WriteString("\n")

	if totalPassed < totalRuns {
		b.WriteString("## ❌ Failure Summary\n\n")
		b.WriteString("| Scenario | Config | Status | Error Summary |\n")
		b.WriteString("|----------|--------|--------|---------------|\n")
		for _, row := range s.Scenarios {
			for _, cfg := range s.ConfigOrder {
				c, ok := row.Configs[cfg]
				if !ok || passIcon(c) == "✅" {
					continue
				}
				fmt.Fprintf(&b, "| %s | %s | ❌ FAIL | %s |\n", row.ScenarioID, cfg, failureSummary(dir, cfg, row.ScenarioID, c))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## ⚡ Performance Insights\n\n")
	b.WriteString("| Config | Fastest Scenario | Slowest Scenario | Avg Agent Turns |\n")
	b.WriteString("|--------|------------------|------------------|-----------------|\n")
	for _, cfg := range s.ConfigOrder {
		st := stats[cfg]
		fastest, slowest := "-", "-"
		if !math.IsInf(st.fastest, 1) {
			fastest = fmt.Sprintf("%s (%.1fs)", st.fastestID, st.fastest)
		}
		if st.slowest > 0 {
			slowest = fmt.Sprintf("%s (%.1fs)", st.slowestID, st.slowest)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cfg, fastest, slowest, avgOr(float64(st.turns), st.agentRuns, "%.1f", "-"))
	}
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "**📁 Detailed Reports**: `reports/{config}/{scenario}.json` | `workspace/%s/{mode}/{config}/{scenario}/final_result.md`\n", s.RunID)
	return b.String()
}

func failureSummary(dir, cfg, scenarioID string, c Count) string {
	r, err := LoadReport(dir, cfg, scenarioID)
	if err == nil && r != nil {
		if r.EvaluationError != nil {
			return truncate(firstLine(r.EvaluationError.Message), 60)
		}
		if r.Evaluation != nil {
			return fmt.Sprintf("score %d/5, judges did not agree the context is sufficient", r.Evaluation.Aggregated.FinalScore)
		}
	}
	return fmt.Sprintf("%d/%d tests passed", c.Passed, c.Total)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// ConfigSummaryMarkdown renders <config>_result.md.
func ConfigSummaryMarkdown(s *Summary, cfg, dir string) (string, error) {
	cs, ok := s.Configs[cfg]
	if !ok {
		return "", fmt.Errorf("config %s not found in summary report", cfg)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# 🎯 %s Results\n\n", strings.ToUpper(cfg))
	fmt.Fprintf(&b, "**Run ID**: %s | **Date**: %s\n\n---\n\n", s.RunID, s.Timestamp)

	status := "❌ MOSTLY FAILED"
	switch {
	case cs.PassRate == 1:
		status = "✅ ALL PASSED"
	case cs.PassRate >= 0.5:
		status = "⚠️ PARTIALLY PASSED"
	}
	b.WriteString("## 📊 Summary\n\n| Metric | Result |\n|--------|--------|\n")
	fmt.Fprintf(&b, "| **Status** | %s |\n", status)
	fmt.Fprintf(&b, "| Scenarios Passed | %d/%d (%s) |\n", cs.PassedScenarios, cs.TotalScenarios, pct(cs.PassRate))
	fmt.Fprintf(&b, "| Test Cases Passed | %d/%d (%s%%) |\n\n", cs.PassedTestCases, cs.TotalTestCases, testCaseRate(cs.PassedTestCases, cs.TotalTestCases))

	b.WriteString("## 📋 Scenario Results\n\n")
	b.WriteString("| Scenario | Status | Score | Judges | Agent | MCP | Total Time |\n")
	b.WriteString("|----------|--------|-------|--------|-------|-----|------------|\n")
	var failed []string
	for _, row := range s.Scenarios {
		c, ok := row.Configs[cfg]
		if !ok {
			continue
		}
		if passIcon(c) == "❌" {
			failed = append(failed, row.ScenarioID)
		}
		r, err := LoadReport(dir, cfg, row.ScenarioID)
		if err != nil || r == nil {
			continue
		}
		score, judges := "-", "-"
		if r.Evaluation != nil {
			agg := r.Evaluation.Aggregated
			score = fmt.Sprintf("%d/5", agg.FinalScore)
			judges = fmt.Sprintf("C %.0f%% / R %.0f%%", agg.CompletenessRate*100, agg.RelevanceRate*100)
		}
		agent := "-"
		if r.AgentStats != nil {
			agent = fmt.Sprintf("%dt / %.0fs", r.AgentStats.Turns, float64(r.AgentStats.ElapsedMS)/1000)
		}
		mcpCol := "0"
		if r.MCPStats != nil {
			mcpCol = fmt.Sprintf("%dc / %.1fs / %d→%dt", r.MCPStats.TotalCalls, float64(r.MCPStats.TotalElapsedMS)/1000,
				r.MCPStats.TotalInputTokens, r.MCPStats.TotalOutputTokens)
		} else if r.OneshotStats != nil {
			mcpCol = fmt.Sprintf("%dc / %s", r.OneshotStats.ToolCalls, r.OneshotStats.ToolUsed)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %.0fs |\n",
			row.ScenarioID, passIcon(c), score, judges, agent, mcpCol, float64(r.TotalElapsedMS)/1000)
	}
	b.WriteString("\n")

	if len(failed) > 0 {
		b.WriteString("## ❌ Failure Details\n\n")
		for _, id := range failed {
			fmt.Fprintf(&b, "#### %s\n\n", id)
			r, err := LoadReport(dir, cfg, id)
			switch {
			case err != nil || r == nil:
				b.WriteString("No report found.\n\n")
			case r.EvaluationError != nil:
				fmt.Fprintf(&b, "```\n%s\n```\n\n", r.EvaluationError.Message)
			case r.Evaluation != nil:
				for _, v := range r.Evaluation.Models {
					fmt.Fprintf(&b, "- **%s** (%d/5): %s\n", v.Model, v.OverallScore, truncate(firstLine(v.Reasoning), 200))
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

// SaveBenchmarkSummary writes <workspace>/<run>/bench_result.md.
func SaveBenchmarkSummary(workspaceRoot string, s *Summary, reportsDir string) (string, error) {
	path := filepath.Join(workspaceRoot, s.RunID, "bench_result.md")
	return path, writeText(path, BenchmarkSummaryMarkdown(s, reportsDir))
}

// SaveConfigSummary writes <workspace>/<run>/<config>/<config>_result.md.
func SaveConfigSummary(workspaceRoot string, s *Summary, cfg, reportsDir string) (string, error) {
	md, err := ConfigSummaryMarkdown(s, cfg, reportsDir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(workspaceRoot, s.RunID, cfg, cfg+"_result.md")
	return path, writeText(path, md)
}

func loadEvaluation(path string) (*Evaluation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoResult, path)
	}
	var ev Evaluation
	if err := sonic.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ev, nil
}

// SaveComparison compares the oneshot and agent evaluations of one scenario
// in a run and writes workspace/<run>/comparison/<config>/<scenario>.md.
func SaveComparison(workspaceRoot, runID, config, scenarioID string) (Comparison, string, error) {
	evals := map[Mode]*Evaluation{}
	for _, mode := range []Mode{ModeOneshot, ModeAgent} {
		path := filepath.Join(workspaceRoot, runID, string(mode), config, scenarioID, fmt.Sprintf("evaluation_%s.json", mode))
		ev, err := loadEvaluation(path)
		if err != nil {
			return Comparison{}, "", err
		}
		evals[mode] = ev
	}
	c := Compare(evals[ModeOneshot], evals[ModeAgent])
	path := filepath.Join(workspaceRoot, runID, "comparison", config, scenarioID+".md")
	return c, path, writeText(path, c.Markdown)
}
