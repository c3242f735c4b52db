package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Benchmark progress markers written to every run log.
const (
	MarkerWorkspaceInit    = ">>>>> Initializing Workspace"
	MarkerWorkspaceReady   = ">>>>> Workspace Ready"
	MarkerMCPConfigStart   = ">>>>> Applying MCP Configuration"
	MarkerMCPConfigApplied = ">>>>> MCP Configuration Applied"
	MarkerMCPConfigFail    = ">>>>> MCP Configuration Failed"
	MarkerAgentStart       = ">>>>> Invoking Agent"
	MarkerAgentToolUse     = ">>>>> Agent Tool Use"
	MarkerAgentSuccess     = ">>>>> Agent Completed"
	MarkerAgentFail        = ">>>>> Agent Failed"
	MarkerAgentTimeout     = ">>>>> Agent Timed Out"
	MarkerValidationStart  = ">>>>> Validating Output"
	MarkerValidationPass   = ">>>>> Validation PASS"
	MarkerValidationFail   = ">>>>> Validation FAIL"
	MarkerReportStart      = ">>>>> Generating Report"
	MarkerReportSaved      = ">>>>> Report Saved"
)

// RunLogger writes one scenario run to its own JSON-lines file. Warnings and
// errors are echoed to the console; everything is echoed when verbose.
type RunLogger struct {
	zl   zerolog.Logger
	file *os.File
	path string
}

// NewRunLogger truncates (or creates) dir/name and returns a logger on it.
func NewRunLogger(dir, name string, verbose bool) (*RunLogger, error) {
	return newRunLogger(dir, name, verbose, os.Stdout)
}

func newRunLogger(dir, name string, verbose bool, console io.Writer) (*RunLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	echo := minLevelWriter{
		out: zerolog.ConsoleWriter{Out: console, TimeFormat: "2006-01-02 15:04:05", NoColor: true},
		min: zerolog.WarnLevel,
	}
	if verbose {
		echo.min = zerolog.TraceLevel
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(file, echo)).With().Timestamp().Logger()
	return &RunLogger{zl: zl, file: file, path: path}, nil
}

// ScenarioLogDir is logs/run_evaluation/<run>/<mode>/<config>/<scenario>.
func ScenarioLogDir(logsDir, runID, mode, configName, scenarioID string) string {
	return filepath.Join(logsDir, "run_evaluation", runID, mode, configName, scenarioID)
}

func (l *RunLogger) Path() string { return l.path }

func (l *RunLogger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *RunLogger) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l *RunLogger) Error(msg string) { l.zl.Error().Msg(msg) }
func (l *RunLogger) Debug(msg string) { l.zl.Debug().Msg(msg) }

func (l *RunLogger) Infof(format string, args ...any) { l.zl.Info().Msgf(format, args...) }

// Marker records a progress marker line.
func (l *RunLogger) Marker(marker string) {
	l.zl.Info().Bool("marker", true).Msg(marker)
}

// JSONL records a structured entry, e.g. a tool call or a verdict.
func (l *RunLogger) JSONL(fields map[string]any) {
	l.zl.Log().Fields(fields).Send()
}

func (l *RunLogger) Close() error {
	return l.file.Close()
}

type minLevelWriter struct {
	out io.Writer
	min zerolog.Level
}

func (w minLevelWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

func (w minLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.min || level == zerolog.NoLevel {
		return len(p), nil
	}
	return w.out.Write(p)
}
