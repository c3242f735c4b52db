package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/bench"
)

const packageYAML = `package-id: autogen
language: python
runtime:
  version: "3.12"
env_vars:
  OPENAI_API_KEY: ${CLI_TEST_MISSING_KEY}
scenarios:
  - id: streaming_tools
    query: Stream the weather tool output to the console using run_stream.
    oracle: oracles/streaming_tools.py
    sources:
      - https://microsoft.github.io/autogen/
`

const configJSON = `{"config_name":"baseline","description":"No MCP servers","mcp_servers":{}}`

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func benchFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "scenarios", "01-autogen.yaml"), packageYAML)
	write(t, filepath.Join(root, "configs", "baseline.json"), configJSON)
	yml := "paths:\n" +
		"  scenarios: " + filepath.Join(root, "scenarios") + "\n" +
		"  configs: " + filepath.Join(root, "configs") + "\n" +
		"  reports: " + filepath.Join(root, "reports") + "\n" +
		"  logs: " + filepath.Join(root, "logs") + "\n" +
		"  workspace: " + filepath.Join(root, "workspace") + "\n"
	path := filepath.Join(root, "bench.yaml")
	write(t, path, yml)
	return path
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := execute(context.Background(), newRoot(&app{out: &out, count: bench.EstimateTokens}), args, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunRequiresConfig(t *testing.T) {
	code, _, stderr := run(t, "--bench-config", benchFixture(t), "run", "--scenario", "autogen:streaming_tools")
	assert.Equal(t, ExitConfigError, code)
	assert.Contains(t, stderr, "either --config or --all-configs must be specified")
}

func TestRunRejectsBadMode(t *testing.T) {
	code, _, stderr := run(t, "--bench-config", benchFixture(t), "run", "--config", "baseline", "--mode", "batch")
	assert.Equal(t, ExitConfigError, code)
	assert.Contains(t, stderr, "batch")
}

func TestUnknownFlagIsConfigError(t *testing.T) {
	code, _, _ := run(t, "--bench-config", benchFixture(t), "run", "--no-such-flag")
	assert.Equal(t, ExitConfigError, code)
}

func TestListCommands(t *testing.T) {
	cfg := benchFixture(t)

	code, out, _ := run(t, "--bench-config", cfg, "list", "packages")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "  autogen\n    Language: python\n    Scenarios: 1")

	code, out, _ = run(t, "--bench-config", cfg, "list", "scenarios")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "    autogen:streaming_tools\n      Stream the weather tool output")

	code, out, _ = run(t, "--bench-config", cfg, "list", "configs")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "  baseline\n    No MCP servers\n    MCP servers: none")
}

func TestShowCommands(t *testing.T) {
	cfg := benchFixture(t)

	code, out, _ := run(t, "--bench-config", cfg, "show", "package", "autogen")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Environment Variables: OPENAI_API_KEY")
	assert.Contains(t, out, "Oracle: oracles/streaming_tools.py")

	code, out, _ = run(t, "--bench-config", cfg, "show", "scenario", "autogen:streaming_tools")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Scenario: autogen:streaming_tools")
	assert.Contains(t, out, "Missing environment variables: CLI_TEST_MISSING_KEY")

	code, _, _ = run(t, "--bench-config", cfg, "show", "scenario", "autogen:nope")
	assert.Equal(t, ExitConfigError, code)
}

func TestTokensCommand(t *testing.T) {
	ws := t.TempDir()
	write(t, filepath.Join(ws, "oneshot", "nia", "a:one", "oneshot_result.md"),
		"# Result\n\n## Tool Result\n\nhello world from the docs\n")
	write(t, filepath.Join(ws, "nia", "nia_result.md"), "# NIA\n")

	code, out, _ := run(t, "--bench-config", benchFixture(t), "tokens", ws, "nia")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "✓ nia: 1 scenarios")

	data, err := os.ReadFile(filepath.Join(ws, "nia", "nia_result.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "## 📊 Token Usage Statistics")
}

func TestCompareRequiresFlags(t *testing.T) {
	code, _, stderr := run(t, "--bench-config", benchFixture(t), "compare", "--run-id", "run-1")
	assert.Equal(t, ExitConfigError, code)
	assert.Contains(t, stderr, "--run-id, --config and --scenario are required")
}

func TestInterruptedContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errOut bytes.Buffer
	code := Execute(ctx, []string{"--bench-config", benchFixture(t), "run", "--config", "baseline", "--mode", "oneshot"}, &out, &errOut)
	assert.Equal(t, ExitInterrupted, code)
}
