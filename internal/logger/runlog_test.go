package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLoggerWritesJSONLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	var console bytes.Buffer

	l, err := newRunLogger(dir, "run_instance.log", false, &console)
	require.NoError(t, err)

	l.Marker(MarkerAgentStart)
	l.Info("starting scenario")
	l.Warn("slow response")
	l.JSONL(map[string]any{"type": "tool_call", "tool": "search_documentation"})
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "run_instance.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)

	var entry map[string]any
	require.NoError(t, sonic.UnmarshalString(lines[0], &entry))
	assert.Equal(t, MarkerAgentStart, entry["message"])
	assert.Equal(t, true, entry["marker"])

	require.NoError(t, sonic.UnmarshalString(lines[3], &entry))
	assert.Equal(t, "search_documentation", entry["tool"])

	assert.Contains(t, console.String(), "slow response")
	assert.NotContains(t, console.String(), "starting scenario")
}

func TestRunLoggerVerboseEchoesEverything(t *testing.T) {
	var console bytes.Buffer
	l, err := newRunLogger(t.TempDir(), "run_instance.log", true, &console)
	require.NoError(t, err)
	defer l.Close()

	l.Info("starting scenario")
	assert.Contains(t, console.String(), "starting scenario")
}

func TestScenarioLogDir(t *testing.T) {
	got := ScenarioLogDir("logs", "run1", "oneshot", "nia", "autogen:team")
	assert.Equal(t, filepath.Join("logs", "run_evaluation", "run1", "oneshot", "nia", "autogen:team"), got)
}
