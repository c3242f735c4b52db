package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestLoadConfigAndList(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "config_name": "nia",
  "description": "NIA docs search",
  "mcp_servers": {
    "nia": {"command": "pipx", "args": ["run", "nia-mcp-server"], "env": {"NIA_API_KEY": "${NIA_API_KEY}"}}
  }
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nia.json"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "baseline.json"), []byte(`{"mcp_servers": {}}`), 0o644))

	names, err := ListConfigs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"baseline", "nia"}, names)

	cfg, err := LoadConfig(dir, "nia")
	require.NoError(t, err)
	assert.Equal(t, "NIA docs search", cfg.Description)
	assert.Equal(t, []string{"nia"}, cfg.ServerNames())
	assert.Equal(t, []string{"run", "nia-mcp-server"}, cfg.MCPServers["nia"].Args)

	base, err := LoadConfig(dir, "baseline")
	require.NoError(t, err)
	assert.Equal(t, "baseline", base.ConfigName)

	_, err = LoadConfig(dir, "missing")
	assert.Error(t, err)
}

func TestMissingEnvAndResolve(t *testing.T) {
	cfg := &Config{ConfigName: "mix", MCPServers: map[string]ServerConfig{
		"exa": {Command: "npx", Env: map[string]string{"EXA_API_KEY": "${EXA_API_KEY}"}},
		"remote": {
			URL:     "https://mcp.example.com/${TENANT}/mcp",
			Headers: map[string]string{"Authorization": "Bearer ${TOKEN}"},
		},
	}}

	assert.Equal(t, []string{"EXA_API_KEY", "TENANT", "TOKEN"}, MissingEnv(cfg, lookupFrom(nil)))

	env := lookupFrom(map[string]string{"EXA_API_KEY": "k1", "TENANT": "acme", "TOKEN": "t0"})
	assert.Empty(t, MissingEnv(cfg, env))

	r, err := Resolve(cfg, env)
	require.NoError(t, err)
	assert.Equal(t, "k1", r.MCPServers["exa"].Env["EXA_API_KEY"])
	assert.Equal(t, "https://mcp.example.com/acme/mcp", r.MCPServers["remote"].URL)
	assert.Equal(t, "Bearer t0", r.MCPServers["remote"].Headers["Authorization"])
	assert.Equal(t, "${EXA_API_KEY}", cfg.MCPServers["exa"].Env["EXA_API_KEY"], "the input is not modified")

	_, err = Resolve(cfg, lookupFrom(map[string]string{"EXA_API_KEY": "k1"}))
	assert.ErrorContains(t, err, "is not set")
}

func TestTransportFor(t *testing.T) {
	_, err := transportFor(ServerConfig{})
	assert.Error(t, err)

	tr, err := transportFor(ServerConfig{Command: "npx", Args: []string{"-y", "exa-mcp-server"}, Env: map[string]string{"A": "b"}})
	require.NoError(t, err)
	ct, ok := tr.(*sdk.CommandTransport)
	require.True(t, ok)
	assert.Contains(t, ct.Command.Env, "A=b")

	tr, err = transportFor(ServerConfig{URL: "http://localhost/sse", Type: "sse"})
	require.NoError(t, err)
	assert.IsType(t, &sdk.SSEClientTransport{}, tr)

	tr, err = transportFor(ServerConfig{URL: "http://localhost/mcp"})
	require.NoError(t, err)
	assert.IsType(t, &sdk.StreamableClientTransport{}, tr)
}

type searchArgs struct {
	Query string `json:"query" jsonschema:"the search query"`
}

// inMemoryClient serves a search tool from an in-process MCP server.
func inMemoryClient(t *testing.T, name string) *Client {
	t.Helper()
	ctx := context.Background()

	server := sdk.NewServer(&sdk.Implementation{Name: name, Version: "test"}, nil)
	sdk.AddTool(server, &sdk.Tool{Name: "search", Description: "Search the docs."},
		func(ctx context.Context, req *sdk.CallToolRequest, in searchArgs) (*sdk.CallToolResult, any, error) {
			if in.Query == "" {
				return &sdk.CallToolResult{IsError: true, Content: []sdk.Content{&sdk.TextContent{Text: "empty query"}}}, nil, nil
			}
			return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: "results for " + in.Query}}}, nil, nil
		})

	ct, st := sdk.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	c, err := ConnectTransport(ctx, name, ct)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientCallTool(t *testing.T) {
	ctx := context.Background()
	c := inMemoryClient(t, "docs")

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "search", tools[0].Name)

	res := c.CallTool(ctx, "search", map[string]any{"query": "react hooks"})
	assert.False(t, res.IsError)
	assert.Equal(t, "results for react hooks", res.Text)

	res = c.CallTool(ctx, "search", map[string]any{"query": ""})
	assert.True(t, res.IsError)

	res = c.CallTool(ctx, "nope", nil)
	assert.True(t, res.IsError)
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	m := NewManager(map[string]ServerConfig{"broken": {}})
	failed := m.ConnectAll(ctx)
	assert.Contains(t, failed, "broken")
	assert.Empty(t, m.Connected())

	m.Add(inMemoryClient(t, "docs"))
	assert.Equal(t, []string{"docs"}, m.Connected())

	res := m.CallTool(ctx, "docs", "search", map[string]any{"query": "x"})
	assert.Equal(t, "results for x", res.Text)

	res = m.CallTool(ctx, "other", "search", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "not found or not connected")

	all := m.ListAllTools(ctx)
	assert.Len(t, all["docs"], 1)
}

func TestEinoTools(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	m.Add(inMemoryClient(t, "docs"))

	tools, err := ManagerTools(ctx, m)
	require.NoError(t, err)
	require.Len(t, tools, 1)

	info, err := tools[0].Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "docs_search", info.Name)
	assert.Equal(t, "Search the docs.", info.Desc)
	require.NotNil(t, info.ParamsOneOf)

	inv, ok := tools[0].(tool.InvokableTool)
	require.True(t, ok)
	out, err := inv.InvokableRun(ctx, `{"query":"gorm"}`)
	require.NoError(t, err)
	assert.Equal(t, "results for gorm", out)

	out, err = inv.InvokableRun(ctx, `{"query":""}`)
	require.NoError(t, err)
	assert.Equal(t, "Error: empty query", out)
}
