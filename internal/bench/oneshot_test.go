package bench

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/mcp"
)

func TestMappingFor(t *testing.T) {
	for cfg, tool := range map[string]string{
		"nia":          "nia_package_search_hybrid",
		"Deepcon-prod": "search_documentation",
		"exa":          "get_code_context_exa",
		"context7":     "get-library-docs",
	} {
		m, err := MappingFor(cfg)
		require.NoError(t, err, cfg)
		assert.Equal(t, tool, m.Tool, cfg)
	}

	_, err := MappingFor("baseline")
	assert.ErrorContains(t, err, "no MCP mapping found for config: baseline")
}

func TestMappingParams(t *testing.T) {
	s := &Scenario{
		ID:      ScenarioID{Package: "autogen", Scenario: "x"},
		Query:   "stream tools",
		Package: &PackageSpec{Language: "python", Context7ID: "/microsoft/autogen", DeepconID: "autogen-agentchat"},
	}

	nia, _ := MappingFor("nia")
	assert.Equal(t, map[string]any{
		"registry":         "npm",
		"package_name":     "autogen",
		"semantic_queries": []string{"stream tools"},
	}, nia.Params(s))
	fb, err := nia.Fallback(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"5cc05f18-2f15-4046-885d-4dd9cb4c5f59"}, fb["sources"])

	s.ID.Package = "agno"
	_, err = nia.Fallback(s)
	assert.ErrorContains(t, err, "no documentation fallback mapping found for package: agno")

	c7, _ := MappingFor("context7")
	assert.Equal(t, "/microsoft/autogen", c7.Params(s)["context7CompatibleLibraryID"])

	dc, _ := MappingFor("deepcon")
	assert.Equal(t, map[string]any{"name": "autogen-agentchat", "language": "python", "query": "stream tools"}, dc.Params(s))
}

func oneshotScenario() *Scenario {
	return &Scenario{
		ID:      ScenarioID{Package: "autogen", Scenario: "streaming_tools"},
		Query:   "Stream a weather assistant.",
		Package: &PackageSpec{PackageID: "autogen", Registry: "pypi"},
	}
}

func TestRunOneshotFallsBackOnErrorContent(t *testing.T) {
	caller := &fakeCaller{
		servers: []string{"nia"},
		results: map[string]mcp.ToolResult{
			"nia_package_search_hybrid": {Text: "❌ Error: not indexed"},
			"search_documentation":      {Text: "  AssistantAgent(model_client=...)  "},
		},
	}
	ws := filepath.Join(t.TempDir(), "ws")

	st, err := RunOneshot(context.Background(), oneshotScenario(), &mcp.Config{ConfigName: "nia"}, caller, ws, testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"nia/nia_package_search_hybrid", "nia/search_documentation"}, caller.calls)
	assert.Equal(t, 1, st.ToolCalls)
	assert.Equal(t, "nia", st.ServerUsed)
	assert.Equal(t, "nia_package_search_hybrid", st.ToolUsed)

	data, err := os.ReadFile(filepath.Join(ws, OneshotResultFile))
	require.NoError(t, err)
	md := string(data)
	assert.Contains(t, md, "# Oneshot Mode Result")
	assert.Contains(t, md, "**Registry**: pypi")
	assert.Contains(t, md, `"package_name": "autogen"`)

	result, ok := ExtractToolResult(md)
	require.True(t, ok)
	assert.Equal(t, "AssistantAgent(model_client=...)", result)
}

func TestRunOneshotRecordsToolError(t *testing.T) {
	caller := &fakeCaller{
		servers: []string{"exa"},
		results: map[string]mcp.ToolResult{"get_code_context_exa": {Text: "rate limited", IsError: true}},
	}
	ws := t.TempDir()

	_, err := RunOneshot(context.Background(), oneshotScenario(), &mcp.Config{ConfigName: "exa"}, caller, ws, testLogger(t))
	require.NoError(t, err)
	assert.Len(t, caller.calls, 1)

	data, err := os.ReadFile(filepath.Join(ws, OneshotResultFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Error**: rate limited")
}

func TestRunOneshotNeedsConnectedServer(t *testing.T) {
	caller := &fakeCaller{servers: []string{"exa"}}
	_, err := RunOneshot(context.Background(), oneshotScenario(), &mcp.Config{ConfigName: "context7"}, caller, t.TempDir(), testLogger(t))
	assert.ErrorContains(t, err, "required MCP server 'context7' is not connected. Available: exa")
}

func TestRunOneshotOverMCP(t *testing.T) {
	m := mcp.NewManager(nil)
	m.Add(docsServer(t, "nia"))
	ws := t.TempDir()

	_, err := RunOneshot(context.Background(), oneshotScenario(), &mcp.Config{ConfigName: "nia"}, m, ws, testLogger(t))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(ws, OneshotResultFile))
	require.NoError(t, err)
	result, ok := ExtractToolResult(string(data))
	require.True(t, ok)
	assert.Equal(t, "Docs for autogen: Stream a weather assistant.", result)
}
