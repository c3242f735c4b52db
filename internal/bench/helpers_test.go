package bench

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"context_bench/internal/logger"
	"context_bench/internal/mcp"
)

const autogenYAML = `package-id: autogen
language: python
registry: pypi
runtime:
  version: "3.12"
env_vars:
  OPENAI_API_KEY: ${OPENAI_API_KEY}
scenarios:
  - id: streaming_tools
    query: Stream a weather assistant with AutoGen tools.
    oracle: oracles/streaming_tools.py
    sources:
      - https://microsoft.github.io/autogen/
  - id: team_termination
    query: Build a round robin team that stops on APPROVE.
    oracle: oracles/team_termination.py
    sources: []
`

const langgraphYAML = `package-id: langgraph
language: python
runtime:
  version: "3.12"
scenarios:
  - id: hil_writer
    query: Pause a writer graph for human approval.
    oracle: oracles/hil_writer.py
    sources: []
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// scenarioDir lays out numbered package files and one oracle.
func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "01-autogen.yaml"), autogenYAML)
	writeFile(t, filepath.Join(dir, "02-langgraph.yaml"), langgraphYAML)
	writeFile(t, filepath.Join(dir, "broken.yaml"), "package-id: [")
	writeFile(t, filepath.Join(dir, "oracles", "streaming_tools.py"), "team.run_stream(task='weather')\n")
	return dir
}

func testLogger(t *testing.T) *logger.RunLogger {
	t.Helper()
	l, err := logger.NewRunLogger(t.TempDir(), "run_instance.log", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func envFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

type queryArgs struct {
	Query       string   `json:"query,omitempty" jsonschema:"the search query"`
	PackageName string   `json:"package_name,omitempty" jsonschema:"the package to search"`
	Queries     []string `json:"semantic_queries,omitempty" jsonschema:"semantic queries"`
	Registry    string   `json:"registry,omitempty" jsonschema:"the package registry"`
	Sources     []string `json:"sources,omitempty" jsonschema:"documentation sources"`
}

// docsServer serves nia-style tools from an in-process MCP server.
func docsServer(t *testing.T, name string) *mcp.Client {
	t.Helper()
	ctx := context.Background()

	server := sdk.NewServer(&sdk.Implementation{Name: name, Version: "test"}, nil)
	sdk.AddTool(server, &sdk.Tool{Name: "nia_package_search_hybrid", Description: "Search a package."},
		func(ctx context.Context, req *sdk.CallToolRequest, in queryArgs) (*sdk.CallToolResult, any, error) {
			if in.PackageName == "broken" {
				return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: "❌ Error: package not indexed"}}}, nil, nil
			}
			text := "Docs for " + in.PackageName + ": " + strings.Join(in.Queries, "; ")
			return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: text}}}, nil, nil
		})
	sdk.AddTool(server, &sdk.Tool{Name: "search_documentation", Description: "Search documentation sources."},
		func(ctx context.Context, req *sdk.CallToolRequest, in queryArgs) (*sdk.CallToolResult, any, error) {
			return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: "fallback docs for " + in.Query}}}, nil, nil
		})

	ct, st := sdk.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	c, err := mcp.ConnectTransport(ctx, name, ct)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// fakeCaller records calls and answers from a table keyed by tool name.
type fakeCaller struct {
	servers []string
	results map[string]mcp.ToolResult
	calls   []string
}

func (f *fakeCaller) Connected() []string { return f.servers }

func (f *fakeCaller) CallTool(_ context.Context, server, tool string, _ map[string]any) mcp.ToolResult {
	f.calls = append(f.calls, server+"/"+tool)
	return f.results[tool]
}
