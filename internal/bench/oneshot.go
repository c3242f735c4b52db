package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"context_bench/internal/logger"
	"context_bench/internal/mcp"
)

// ToolCaller is the part of mcp.Manager oneshot mode needs.
type ToolCaller interface {
	Connected() []string
	CallTool(ctx context.Context, server, tool string, args map[string]any) mcp.ToolResult
}

// OneshotResultFile is written to the scenario workspace.
const OneshotResultFile = "oneshot_result.md"

// ToolMapping describes the single call made for one kind of MCP server.
type ToolMapping struct {
	Server       string
	Tool         string
	FallbackTool string
	Params       func(s *Scenario) map[string]any
	Fallback     func(s *Scenario) (map[string]any, error)
}

// niaDocSources maps packages to the documentation source searched when the
// package search fails.
var niaDocSources = map[string]string{
	"autogen":        "5cc05f18-2f15-4046-885d-4dd9cb4c5f59",
	"openrouter-sdk": "https://openrouter.ai/docs",
}

// mappingOrder fixes the lookup order so a config name matching several keys
// resolves deterministically.
var mappingOrder = []string{"nia", "deepcon", "exa", "context7"}

var mappings = map[string]ToolMapping{
	"nia": {
		Server:       "nia",
		Tool:         "nia_package_search_hybrid",
		FallbackTool: "search_documentation",
		Params: func(s *Scenario) map[string]any {
			registry := "npm"
			if s.Package != nil && s.Package.Registry != "" {
				registry = s.Package.Registry
			}
			return map[string]any{
				"registry":         registry,
				"package_name":     s.ID.Package,
				"semantic_queries": []string{s.Query},
			}
		},
		Fallback: func(s *Scenario) (map[string]any, error) {
			src, ok := niaDocSources[s.ID.Package]
			if !ok {
				return nil, fmt.Errorf("no documentation fallback mapping found for package: %s", s.ID.Package)
			}
			return map[string]any{"query": s.Query, "sources": []string{src}}, nil
		},
	},
	"deepcon": {
		Server: "deepcon",
		Tool:   "search_documentation",
		Params: func(s *Scenario) map[string]any {
			name := s.ID.Package
			if s.Package != nil && s.Package.DeepconID != "" {
				name = s.Package.DeepconID
			}
			return map[string]any{"name": name, "language": s.Language(), "query": s.Query}
		},
	},
	"exa": {
		Server: "exa",
		Tool:   "get_code_context_exa",
		Params: func(s *Scenario) map[string]any {
			return map[string]any{"query": s.Query}
		},
	},
	"context7": {
		Server: "context7",
		Tool:   "get-library-docs",
		Params: func(s *Scenario) map[string]any {
			id := s.ID.Package
			if s.Package != nil && s.Package.Context7ID != "" {
				id = s.Package.Context7ID
			}
			return map[string]any{"context7CompatibleLibraryID": id, "topic": s.Query}
		},
	},
}

// MappingFor picks the mapping whose key appears in the config name.
func MappingFor(configName string) (ToolMapping, error) {
	lower := strings.ToLower(configName)
	for _, key := range mappingOrder {
		if strings.Contains(lower, key) {
			return mappings[key], nil
		}
	}
	return ToolMapping{}, fmt.Errorf("no MCP mapping found for config: %s. Expected one of: %s",
		configName, strings.Join(mappingOrder, ", "))
}

func hasErrorContent(text string) bool {
	return strings.Contains(text, "❌ Error") || strings.Contains(text, "Server error")
}

// RunOneshot makes the config's single mapped tool call and writes the
// result to workspace/oneshot_result.md.
func RunOneshot(ctx context.Context, s *Scenario, cfg *mcp.Config, caller ToolCaller, workspace string, log *logger.RunLogger) (*OneshotStats, error) {
	log.Marker(">>>>> Oneshot Mode: Single Tool Call")
	log.Infof("Scenario: %s", s.FullID())
	log.Infof("Query: %s...", truncate(s.Query, 100))
	log.Infof("MCP Config: %s", cfg.ConfigName)
	start := time.Now()

	m, err := MappingFor(cfg.ConfigName)
	if err != nil {
		return nil, err
	}
	log.Infof("Using MCP mapping: %s", m.Server)

	connected := caller.Connected()
	if !slices.Contains(connected, m.Server) {
		return nil, fmt.Errorf("required MCP server '%s' is not connected. Available: %s",
			m.Server, strings.Join(connected, ", "))
	}

	params := m.Params(s)
	log.Marker(fmt.Sprintf(">>>>> Calling MCP Tool: %s on %s", m.Tool, m.Server))
	log.JSONL(map[string]any{"tool": m.Tool, "server": m.Server, "input": params})

	result := caller.CallTool(ctx, m.Server, m.Tool, params)
	if m.FallbackTool != "" && (result.IsError || hasErrorContent(result.Text)) {
		log.Warn(fmt.Sprintf("Primary tool '%s' failed: %s", m.Tool, result.Text))
		if m.Fallback != nil {
			fb, err := m.Fallback(s)
			if err != nil {
				log.Error("Fallback parameter building failed: " + err.Error())
			} else {
				log.Infof("Trying fallback: %s with documentation source: %v", m.FallbackTool, fb["sources"])
				result = caller.CallTool(ctx, m.Server, m.FallbackTool, fb)
			}
		} else {
			result = caller.CallTool(ctx, m.Server, m.FallbackTool, params)
		}
	}
	log.Infof("Tool call completed (error: %t)", result.IsError)

	md, err := oneshotMarkdown(s, m, params, result, time.Now())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	path := filepath.Join(workspace, OneshotResultFile)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return nil, fmt.Errorf("write oneshot result: %w", err)
	}
	log.Infof("Oneshot result saved to %s", path)
	log.Marker(">>>>> Oneshot Completed")

	return &OneshotStats{
		ToolCalls:  1,
		ElapsedMS:  time.Since(start).Milliseconds(),
		ToolUsed:   m.Tool,
		ServerUsed: m.Server,
	}, nil
}

func oneshotMarkdown(s *Scenario, m ToolMapping, params map[string]any, result mcp.ToolResult, now time.Time) (string, error) {
	input, err := sonic.ConfigStd.MarshalIndent(params, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tool input: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Oneshot Mode Result\n\n")
	fmt.Fprintf(&b, "**Scenario**: %s\n", s.FullID())
	fmt.Fprintf(&b, "**Package**: %s\n", s.ID.Package)
	if s.Package != nil && s.Package.Registry != "" {
		fmt.Fprintf(&b, "**Registry**: %s\n", s.Package.Registry)
	}
	if s.Package != nil && s.Package.Context7ID != "" {
		fmt.Fprintf(&b, "**Context7 ID**: %s\n", s.Package.Context7ID)
	}
	fmt.Fprintf(&b, "**MCP Server**: %s\n", m.Server)
	fmt.Fprintf(&b, "**Tool Called**: %s\n", m.Tool)
	fmt.Fprintf(&b, "**Timestamp**: %s\n\n", now.UTC().Format(time.RFC3339))
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "## Query\n\n%s\n\n", s.Query)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "## Tool Input\n\n```json\n%s\n```\n\n", input)
	b.WriteString("---\n\n")
	b.WriteString("## Tool Result\n\n")
	if result.IsError {
		fmt.Fprintf(&b, "**Error**: %s\n", result.Text)
	} else {
		b.WriteString(strings.TrimSpace(result.Text) + "\n")
	}
	return b.String(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
