// Package bench runs the Context Bench benchmark: every scenario query is
// answered through the MCP servers of a config, judged by several models
// and reported per config.
package bench

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects how a scenario gathers context.
type Mode string

const (
	ModeOneshot Mode = "oneshot"
	ModeAgent   Mode = "agent"
)

// ParseMode accepts "oneshot" or "agent".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOneshot, ModeAgent:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q: must be %q or %q", s, ModeOneshot, ModeAgent)
}

var (
	ErrPackageNotFound  = errors.New("package not found")
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidPackage   = errors.New("invalid package spec")
	ErrInvalidID        = errors.New("invalid scenario id")
)

// PackageSpec is one scenarios/<package>.yaml file.
type PackageSpec struct {
	PackageID  string            `yaml:"package-id" json:"package-id"`
	Language   string            `yaml:"language" json:"language"`
	Registry   string            `yaml:"registry,omitempty" json:"registry,omitempty"`
	Context7ID string            `yaml:"context7-id,omitempty" json:"context7-id,omitempty"`
	DeepconID  string            `yaml:"deepcon-id,omitempty" json:"deepcon-id,omitempty"`
	Runtime    Runtime           `yaml:"runtime" json:"runtime"`
	EnvVars    map[string]string `yaml:"env_vars,omitempty" json:"env_vars,omitempty"`
	Scenarios  []ScenarioItem    `yaml:"scenarios" json:"scenarios"`
}

type Runtime struct {
	Version string `yaml:"version" json:"version"`
}

// ScenarioItem is one entry of a package. Oracle is a path to the reference
// implementation, relative to the scenarios directory.
type ScenarioItem struct {
	ID      string   `yaml:"id" json:"id"`
	Query   string   `yaml:"query" json:"query"`
	Oracle  string   `yaml:"oracle" json:"oracle"`
	Sources []string `yaml:"sources" json:"sources"`
}

// ScenarioID is a parsed "package:scenario" identifier.
type ScenarioID struct {
	Package  string
	Scenario string
}

func (id ScenarioID) String() string { return id.Package + ":" + id.Scenario }

// ParseScenarioID splits "package:scenario".
func ParseScenarioID(s string) (ScenarioID, error) {
	pkg, scenario, ok := strings.Cut(s, ":")
	pkg, scenario = strings.TrimSpace(pkg), strings.TrimSpace(scenario)
	if !ok || pkg == "" || scenario == "" {
		return ScenarioID{}, fmt.Errorf("%w: %q, expected package-id:scenario-id", ErrInvalidID, s)
	}
	return ScenarioID{Package: pkg, Scenario: scenario}, nil
}

// Scenario is a resolved scenario ready to run.
type Scenario struct {
	ID      ScenarioID
	Name    string
	Query   string
	Oracle  string
	Sources []string
	Package *PackageSpec
}

// FullID is "package:scenario".
func (s *Scenario) FullID() string { return s.ID.String() }

// Language defaults to typescript like the package files do.
func (s *Scenario) Language() string {
	if s.Package != nil && s.Package.Language != "" {
		return s.Package.Language
	}
	return "typescript"
}

// Verdict is one judge model's answer.
type Verdict struct {
	Model        string `json:"model"`
	Completeness bool   `json:"completeness"`
	Relevance    bool   `json:"relevance"`
	OverallScore int    `json:"overall_score"`
	Confidence   string `json:"confidence"`
	Reasoning    string `json:"reasoning"`
}

// Aggregate combines the verdicts of all judges.
type Aggregate struct {
	CompletenessRate     float64 `json:"completeness_rate"`
	RelevanceRate        float64 `json:"relevance_rate"`
	AverageScore         float64 `json:"average_score"`
	FinalScore           int     `json:"final_score"`
	CompletenessMajority bool    `json:"completeness_majority"`
	RelevanceMajority    bool    `json:"relevance_majority"`
	Pass                 bool    `json:"pass"`
}

type Evaluation struct {
	Mode       Mode      `json:"mode"`
	Models     []Verdict `json:"models"`
	Aggregated Aggregate `json:"aggregated"`
	Consensus  bool      `json:"consensus"`
}

type AgentStats struct {
	Turns     int   `json:"turns"`
	ToolCalls int   `json:"tool_calls"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

type OneshotStats struct {
	ToolCalls  int    `json:"tool_calls"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	ToolUsed   string `json:"mcp_tool_used,omitempty"`
	ServerUsed string `json:"mcp_server_used,omitempty"`
}

type MCPStats struct {
	TotalCalls        int   `json:"total_calls"`
	TotalElapsedMS    int64 `json:"total_elapsed_ms"`
	TotalInputTokens  int   `json:"total_input_tokens"`
	TotalOutputTokens int   `json:"total_output_tokens"`
}

type ErrorInfo struct {
	Message string `json:"message"`
}

// Report is reports/<config>/<scenario>.json.
type Report struct {
	ScenarioID      string        `json:"scenario_id"`
	Config          string        `json:"config"`
	RunID           string        `json:"run_id"`
	Timestamp       string        `json:"timestamp"`
	Mode            Mode          `json:"mode"`
	Passed          int           `json:"passed"`
	Total           int           `json:"total"`
	PassRate        float64       `json:"pass_rate"`
	AgentStats      *AgentStats   `json:"agent_stats,omitempty"`
	OneshotStats    *OneshotStats `json:"oneshot_stats,omitempty"`
	Evaluation      *Evaluation   `json:"evaluation,omitempty"`
	EvaluationError *ErrorInfo    `json:"evaluation_error,omitempty"`
	MCPStats        *MCPStats     `json:"mcp_stats,omitempty"`
	TotalElapsedMS  int64         `json:"total_elapsed_ms"`
}

// Succeeded is true when every test case of the report passed.
func (r *Report) Succeeded() bool {
	return r.Total > 0 && r.Passed == r.Total
}

type ConfigSummary struct {
	PassedScenarios int     `json:"passed_scenarios"`
	TotalScenarios  int     `json:"total_scenarios"`
	PassRate        float64 `json:"pass_rate"`
	TotalTestCases  int     `json:"total_test_cases"`
	PassedTestCases int     `json:"passed_test_cases"`
}

type Count struct {
	Passed int `json:"passed"`
	Total  int `json:"total"`
}

type ScenarioSummary struct {
	ScenarioID string           `json:"scenario_id"`
	Configs    map[string]Count `json:"configs"`
}

// Summary is reports/summary.json.
type Summary struct {
	RunID          string                   `json:"run_id"`
	Timestamp      string                   `json:"timestamp"`
	TotalScenarios int                      `json:"total_scenarios"`
	Configs        map[string]ConfigSummary `json:"configs"`
	ConfigOrder    []string                 `json:"config_order"`
	Scenarios      []ScenarioSummary        `json:"scenarios"`
}
