package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"

	"context_bench/internal/agents"
	"context_bench/internal/logger"
)

const (
	MCPResultsDir  = "mcp_results"
	MCPSummaryFile = "summary.md"
	AgentAnswer    = "answer.md"
)

// MCPCall is one tool call the agent made.
type MCPCall struct {
	Timestamp  string `json:"timestamp"`
	Tool       string `json:"tool"`
	ToolUseID  string `json:"tool_use_id"`
	Input      any    `json:"input"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`

	started time.Time
}

// AgentResult is what RunAgent hands back to the scenario runner.
type AgentResult struct {
	Stats  AgentStats
	MCP    *MCPStats
	Calls  []*MCPCall
	Answer string
}

// AgentRunner answers scenario queries with a ReAct agent over the MCP tools.
type AgentRunner struct {
	Model    model.ToolCallingChatModel
	Tools    []tool.BaseTool
	Counter  TokenCounter
	MaxSteps int
}

func serverList(servers []string) string {
	if len(servers) == 0 {
		return "none"
	}
	return strings.Join(servers, ", ")
}

// agentInstructions asks the agent to research through every server before
// writing the implementation.
func agentInstructions(s *Scenario, servers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are implementing a %s program against the package %q.\n", s.Language(), s.ID.Package)
	b.WriteString("Answer with one complete implementation in a single fenced code block, followed by a short explanation.\n")
	b.WriteString("Do not generate fake, placeholder or hardcoded data for output fields.\n")
	if len(servers) == 0 {
		return b.String()
	}

	uses := make([]string, 0, len(servers))
	for _, name := range servers {
		uses = append(uses, "USE "+strings.ToUpper(camel(name)))
	}
	fmt.Fprintf(&b, "\nREQUIRED: %s to gather comprehensive information:\n", strings.Join(uses, ", "))
	b.WriteString(`- Search official documentation thoroughly
- Find ALL relevant API examples
- Confirm authentication methods and required credentials
- Verify API versions, schemas and data formats

DO NOT rely on your own knowledge or make assumptions:
- ALWAYS search the documentation using the tools FIRST
- Call the tools MULTIPLE TIMES to explore different aspects of the API
- Only after collecting the information, write the implementation`)
	return b.String()
}

func camel(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

// Run drives the agent, records every MCP call and writes mcp_results/ and
// answer.md into the workspace.
func (r *AgentRunner) Run(ctx context.Context, s *Scenario, configName string, servers []string, workspace string, log *logger.RunLogger) (*AgentResult, error) {
	log.Marker(logger.MarkerAgentStart)
	log.Infof("Agent prompt: %d chars", len(s.Query))
	log.Infof("MCP servers: %s", serverList(servers))
	start := time.Now()

	a := &agents.Agent{
		Name:         "ContextAgent",
		Instructions: agentInstructions(s, servers),
		Tools:        r.Tools,
	}
	runner := agents.NewRunner(r.Model)
	if r.MaxSteps > 0 {
		runner.MaxSteps = r.MaxSteps
	}

	sr, err := runner.RunStreamed(ctx, a, s.Query)
	if err != nil {
		log.Marker(logger.MarkerAgentFail)
		return nil, err
	}
	defer sr.Close()

	res := &AgentResult{}
	var open []*MCPCall
	afterOutput := true
	turns := 0
	for {
		ev, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Marker(logger.MarkerAgentTimeout)
			} else {
				log.Marker(logger.MarkerAgentFail)
			}
			log.Error("Error: " + err.Error())
			return nil, err
		}

		switch ev.Type {
		case agents.EventToolCall:
			if afterOutput {
				turns++
				afterOutput = false
			}
			res.Stats.ToolCalls++
			log.Marker(logger.MarkerAgentToolUse + ": " + ev.Tool)
			call := &MCPCall{
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
				Tool:      ev.Tool,
				ToolUseID: fmt.Sprintf("call_%d", len(res.Calls)+1),
				Input:     decodeArgs(ev.Args),
				started:   time.Now(),
			}
			res.Calls = append(res.Calls, call)
			open = append(open, call)
			log.JSONL(map[string]any{"tool": ev.Tool, "tool_use_id": call.ToolUseID, "input": call.Input})
		case agents.EventToolOutput:
			afterOutput = true
			for i, c := range open {
				if c.Tool != ev.Tool {
					continue
				}
				if strings.HasPrefix(ev.Output, "Error: ") {
					c.Error = strings.TrimPrefix(ev.Output, "Error: ")
				} else {
					c.Output = ev.Output
				}
				c.DurationMS = time.Since(c.started).Milliseconds()
				open = append(open[:i], open[i+1:]...)
				break
			}
		case agents.EventDone:
			if ev.Result != nil {
				res.Answer = ev.Result.FinalOutput
			}
		}
	}

	res.Stats.Turns = turns + 1
	res.Stats.ElapsedMS = time.Since(start).Milliseconds()
	log.Marker(logger.MarkerAgentSuccess)
	log.Infof("Total turns: %d, tool calls: %d", res.Stats.Turns, res.Stats.ToolCalls)

	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workspace, AgentAnswer), []byte(res.Answer), 0o644); err != nil {
		return nil, fmt.Errorf("write agent answer: %w", err)
	}

	if len(servers) > 0 && len(res.Calls) > 0 {
		res.MCP = mcpStats(res.Calls, r.counter())
		log.Infof("MCP Stats: %d calls, %dms total, %d input tokens, %d output tokens",
			res.MCP.TotalCalls, res.MCP.TotalElapsedMS, res.MCP.TotalInputTokens, res.MCP.TotalOutputTokens)
		if err := SaveMCPResults(workspace, configName, servers, res.Calls, time.Now()); err != nil {
			return nil, err
		}
		log.Infof("MCP results saved to %s", filepath.Join(workspace, MCPResultsDir, MCPSummaryFile))
	}
	return res, nil
}

func (r *AgentRunner) counter() TokenCounter {
	if r.Counter == nil {
		return EstimateTokens
	}
	return r.Counter
}

func decodeArgs(args string) any {
	var v map[string]any
	if err := sonic.UnmarshalString(args, &v); err != nil {
		return args
	}
	return v
}

func mcpStats(calls []*MCPCall, count TokenCounter) *MCPStats {
	st := &MCPStats{TotalCalls: len(calls)}
	for _, c := range calls {
		st.TotalElapsedMS += c.DurationMS
		if c.Input != nil {
			st.TotalInputTokens += count(jsonText(c.Input))
		}
		if c.Output != "" {
			st.TotalOutputTokens += count(c.Output)
		}
	}
	return st
}

func jsonText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	out, err := sonic.MarshalString(v)
	if err != nil {
		return ""
	}
	return out
}

func indentJSON(v any) string {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}

// SaveMCPResults writes summary.md, calls.json and one call_N.md per call.
func SaveMCPResults(workspace, configName string, servers []string, calls []*MCPCall, now time.Time) error {
	dir := filepath.Join(workspace, MCPResultsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	generated := now.UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString("# MCP Tool Calls Summary\n\n")
	fmt.Fprintf(&b, "**Configuration**: %s\n", configName)
	fmt.Fprintf(&b, "**MCP Servers**: %s\n", strings.Join(servers, ", "))
	fmt.Fprintf(&b, "**Total Calls**: %d\n", len(calls))
	fmt.Fprintf(&b, "**Generated**: %s\n\n", generated)
	b.WriteString("---\n\n")
	b.WriteString("## Calls by Tool\n\n")

	var order []string
	byTool := map[string][]*MCPCall{}
	for _, c := range calls {
		if _, ok := byTool[c.Tool]; !ok {
			order = append(order, c.Tool)
		}
		byTool[c.Tool] = append(byTool[c.Tool], c)
	}
	for _, name := range order {
		group := byTool[name]
		fmt.Fprintf(&b, "### %s (%d calls)\n\n", name, len(group))
		for i, c := range group {
			fmt.Fprintf(&b, "#### Call %d\n\n", i+1)
			fmt.Fprintf(&b, "**Timestamp**: %s\n", c.Timestamp)
			if c.DurationMS > 0 {
				fmt.Fprintf(&b, "**Duration**: %dms\n", c.DurationMS)
			}
			fmt.Fprintf(&b, "\n**Input**:\n```json\n%s\n```\n\n", indentJSON(c.Input))
			switch {
			case c.Error != "":
				fmt.Fprintf(&b, "**Error**:\n```\n%s\n```\n\n", c.Error)
			case c.Output != "":
				fmt.Fprintf(&b, "**Output**:\n```\n%s\n```\n\n", c.Output)
			default:
				b.WriteString("**Output**: _(No response captured)_\n\n")
			}
			b.WriteString("---\n\n")
		}
	}
	if err := os.WriteFile(filepath.Join(dir, MCPSummaryFile), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write MCP summary: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(map[string]any{
		"config":       configName,
		"servers":      servers,
		"total_calls":  len(calls),
		"calls":        calls,
		"generated_at": generated,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal MCP calls: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "calls.json"), data, 0o644); err != nil {
		return fmt.Errorf("write MCP calls: %w", err)
	}

	for i, c := range calls {
		var cb strings.Builder
		fmt.Fprintf(&cb, "# MCP Call %d\n\n", i+1)
		fmt.Fprintf(&cb, "**Tool**: %s\n", c.Tool)
		fmt.Fprintf(&cb, "**Timestamp**: %s\n", c.Timestamp)
		fmt.Fprintf(&cb, "**Tool Use ID**: %s\n", c.ToolUseID)
		if c.DurationMS > 0 {
			fmt.Fprintf(&cb, "**Duration**: %dms\n", c.DurationMS)
		}
		cb.WriteString("\n---\n\n")
		fmt.Fprintf(&cb, "## Input\n\n```json\n%s\n```\n\n", indentJSON(c.Input))
		cb.WriteString("## Output\n\n")
		switch {
		case c.Error != "":
			fmt.Fprintf(&cb, "**Error occurred:**\n\n```\n%s\n```\n", c.Error)
		case c.Output != "":
			cb.WriteString(c.Output + "\n")
		default:
			cb.WriteString("_(No response captured)_\n")
		}
		name := filepath.Join(dir, fmt.Sprintf("call_%d.md", i+1))
		if err := os.WriteFile(name, []byte(cb.String()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
