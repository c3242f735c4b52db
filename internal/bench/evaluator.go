package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"context_bench/internal/logger"
)

// DefaultJudges are used when bench.yaml names none.
var DefaultJudges = []string{
	"openai/gpt-5",
	"deepseek/deepseek-v3.2-exp",
	"x-ai/grok-4",
}

var ErrNoResult = errors.New("no result to evaluate")

// ModelFactory opens the chat model for one judge.
type ModelFactory func(ctx context.Context, name string) (model.BaseChatModel, error)

// Evaluator asks several judge models whether the gathered context is
// enough to write the oracle implementation.
type Evaluator struct {
	Models      []string
	NewModel    ModelFactory
	Loader      *Loader
	MaxAttempts int
	// BaseDelay is the first retry delay; each retry doubles it.
	BaseDelay time.Duration
	Limiter   *rate.Limiter
}

func NewEvaluator(models []string, newModel ModelFactory, loader *Loader) *Evaluator {
	if len(models) == 0 {
		models = DefaultJudges
	}
	return &Evaluator{
		Models:      models,
		NewModel:    newModel,
		Loader:      loader,
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Limiter:     rate.NewLimiter(rate.Limit(2), 1),
	}
}

const judgeSystemPrompt = `You are an expert evaluator for MCP context quality assessment.
Your task is to evaluate whether the MCP context retrieved contains sufficient information to implement the oracle code.

**Evaluation Focus**: Can a developer implement functionality equivalent to the oracle code based on the MCP context only?

**Evaluation Process (Follow in Order)**:

**Step 1: Analyze User Requirements**
- Extract ALL specific requirements from the user's query
- Identify explicit constraints (specific APIs, models, versions, features)

**Step 2: Analyze Oracle Implementation**
- What APIs/functions does the oracle use?
- What parameters and return types are used?

**Step 3: Evaluate MCP Context Completeness**
For EACH requirement identified in Step 1, check if the MCP context provides:
1. **API/Function signatures**: Are the necessary functions documented?
2. **Parameters**: Can parameter types, names, and purposes be inferred from examples?
3. **Return values**: Can return types and structures be inferred from examples?
4. **Usage patterns**: Are there examples showing how to use the APIs?

**Step 4: Make Completeness Decision**
- **COMPLETE (true)** = For ALL user requirements, the MCP context provides enough information to infer API signatures, parameters, return types, and usage
- **INCOMPLETE (false)** = ANY critical information is missing or cannot be reliably inferred from context

**Key Rules**:
1. Explicit constraints must be met: user says "use GPT-4" and context only has GPT-3 means INCOMPLETE.
2. All information must be inferable from context. If you have to guess without evidence, it is INCOMPLETE.
3. Partial implementation is INCOMPLETE.

Evaluation criteria:
- **Completeness (boolean)**: true only when every requirement can be implemented from the context.
- **Relevance (boolean)**: true when the context directly addresses the user's requirements and the oracle's functionality.
- **Overall Score (1-5)**: 5 Excellent, 4 Good, 3 Average, 2 Below Average, 1 Poor.
- **Confidence (high/medium/low)**: how sure you are of the assessment.

Respond with ONLY a JSON object of the form:
{"completeness": true|false, "relevance": true|false, "overall_score": 1-5, "confidence": "high"|"medium"|"low", "reasoning": "..."}`

// EvaluationPrompt is the user message every judge receives.
func EvaluationPrompt(s *Scenario, mode Mode, resultMD, oracle string) string {
	var b strings.Builder
	b.WriteString("# MCP Context Evaluation Task\n\n")
	fmt.Fprintf(&b, "**Scenario**: %s\n", s.FullID())
	fmt.Fprintf(&b, "**Mode**: %s\n", mode)
	b.WriteString("**Task**: Evaluate whether the MCP context contains sufficient information to implement the oracle code\n\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "## Original Query\n\n%s\n\n", s.Query)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "## MCP Context Retrieved\n\n%s\n\n", resultMD)
	b.WriteString("---\n\n")
	if oracle != "" {
		b.WriteString("## Oracle Code (Target Implementation)\n\n")
		if strings.Contains(oracle, "```") {
			b.WriteString(oracle + "\n\n")
		} else {
			fmt.Fprintf(&b, "```\n%s\n```\n\n", oracle)
		}
		b.WriteString("---\n\n")
	}
	b.WriteString(`## Evaluation Task

Follow these steps systematically:

### Step 1: Analyze User Requirements
- What functionality is requested?
- Are there explicit constraints? (specific APIs, models, versions, features)

### Step 2: Analyze Oracle Implementation
- What APIs/functions does it use?
- What are the parameter types and return types?

### Step 3: Evaluate MCP Context Coverage
For EACH user requirement, check if the MCP context allows you to infer:
1. API/Function names
2. Parameter types
3. Parameter names/purposes
4. Return value structure
5. Usage patterns
6. Error handling

### Step 4: Make Your Decision
**Completeness = true** only if ALL requirements are addressable and no guessing is required.

---

Your reasoning MUST include:
1. List of user requirements
2. Oracle's implementation details
3. For each requirement: what information is in the context and what can be inferred
4. Clear decision: Complete or Incomplete and why
5. Quote specific examples from context as evidence`)
	return b.String()
}

// ReadResult loads what mode produced in workspace.
func ReadResult(mode Mode, workspace string) (string, error) {
	if mode == ModeOneshot {
		data, err := os.ReadFile(filepath.Join(workspace, OneshotResultFile))
		if err != nil {
			return "", fmt.Errorf("%w for %s mode in %s", ErrNoResult, mode, workspace)
		}
		return string(data), nil
	}

	var out string
	if data, err := os.ReadFile(filepath.Join(workspace, MCPResultsDir, MCPSummaryFile)); err == nil {
		out = string(data)
	}
	if data, err := os.ReadFile(filepath.Join(workspace, AgentAnswer)); err == nil && len(data) > 0 {
		out += "\n\n---\n\n## Implementation Code\n\n" + string(data) + "\n"
	}
	if out == "" {
		return "", fmt.Errorf("%w for %s mode in %s", ErrNoResult, mode, workspace)
	}
	return out, nil
}

// ParseVerdict reads a judge reply. Code fences and surrounding prose are
// tolerated.
func ParseVerdict(modelName, content string) (Verdict, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end < start {
		return Verdict{}, fmt.Errorf("no JSON object in response from %s", modelName)
	}
	var v Verdict
	if err := sonic.UnmarshalString(content[start:end+1], &v); err != nil {
		return Verdict{}, fmt.Errorf("parse verdict from %s: %w", modelName, err)
	}
	if v.OverallScore < 1 || v.OverallScore > 5 {
		return Verdict{}, fmt.Errorf("overall_score %d from %s is outside 1-5", v.OverallScore, modelName)
	}
	switch v.Confidence {
	case "high", "medium", "low":
	default:
		return Verdict{}, fmt.Errorf("invalid confidence %q from %s", v.Confidence, modelName)
	}
	v.Model = modelName
	return v, nil
}

// AggregateVerdicts combines verdicts. A majority is more than half of the
// judges; the scenario passes when both completeness and relevance have one.
func AggregateVerdicts(vs []Verdict) (Aggregate, bool) {
	n := len(vs)
	if n == 0 {
		return Aggregate{}, false
	}
	complete, relevant, sum := 0, 0, 0
	for _, v := range vs {
		if v.Completeness {
			complete++
		}
		if v.Relevance {
			relevant++
		}
		sum += v.OverallScore
	}
	avg := float64(sum) / float64(n)
	agg := Aggregate{
		CompletenessRate:     float64(complete) / float64(n),
		RelevanceRate:        float64(relevant) / float64(n),
		AverageScore:         avg,
		FinalScore:           int(math.Floor(avg + 0.5)),
		CompletenessMajority: complete*2 > n,
		RelevanceMajority:    relevant*2 > n,
	}
	agg.Pass = agg.CompletenessMajority && agg.RelevanceMajority
	consensus := (complete == 0 || complete == n) && (relevant == 0 || relevant == n)
	return agg, consensus
}

// Evaluate judges the result of mode in workspace and writes
// evaluation_<mode>.json next to it.
func (e *Evaluator) Evaluate(ctx context.Context, s *Scenario, mode Mode, workspace string, log *logger.RunLogger) (*Evaluation, error) {
	log.Marker(fmt.Sprintf(">>>>> Evaluating %s mode result with %d models", mode, len(e.Models)))

	resultMD, err := ReadResult(mode, workspace)
	if err != nil {
		log.Marker(">>>>> Evaluation Failed")
		return nil, err
	}
	var oracle string
	if e.Loader != nil {
		oracle, err = e.Loader.OracleContent(s)
		if err != nil {
			log.Warn(err.Error())
		}
	}
	prompt := []*schema.Message{
		schema.SystemMessage(judgeSystemPrompt),
		schema.UserMessage(EvaluationPrompt(s, mode, resultMD, oracle)),
	}

	verdicts := make([]Verdict, len(e.Models))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range e.Models {
		g.Go(func() error {
			v, err := e.judge(gctx, name, prompt, log)
			if err != nil {
				return err
			}
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Marker(">>>>> Evaluation Failed")
		log.Error("Error: " + err.Error())
		return nil, err
	}
	log.Marker(">>>>> All Model Evaluations Complete")

	agg, consensus := AggregateVerdicts(verdicts)
	ev := &Evaluation{Mode: mode, Models: verdicts, Aggregated: agg, Consensus: consensus}
	log.Infof("Final Score: %d/5 (avg: %.2f)", agg.FinalScore, agg.AverageScore)
	log.Infof("Overall: %s (consensus: %t)", passLabel(agg.Pass), consensus)

	data, err := sonic.ConfigStd.MarshalIndent(map[string]any{
		"scenario":   s.FullID(),
		"mode":       mode,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"models":     verdicts,
		"aggregated": agg,
		"consensus":  consensus,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation: %w", err)
	}
	path := filepath.Join(workspace, fmt.Sprintf("evaluation_%s.json", mode))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write evaluation: %w", err)
	}
	log.Infof("Evaluation saved to %s", path)
	return ev, nil
}

func (e *Evaluator) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 64 * e.BaseDelay
	b.MaxElapsedTime = 0
	attempts := e.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// judge asks one model, retrying failed calls and unparsable replies.
func (e *Evaluator) judge(ctx context.Context, name string, prompt []*schema.Message, log *logger.RunLogger) (Verdict, error) {
	m, err := e.NewModel(ctx, name)
	if err != nil {
		return Verdict{}, fmt.Errorf("judge %s: %w", name, err)
	}

	attempt := 0
	op := func() (Verdict, error) {
		attempt++
		log.Infof("  - Calling %s (attempt %d/%d)...", name, attempt, e.MaxAttempts)
		if e.Limiter != nil {
			if err := e.Limiter.Wait(ctx); err != nil {
				return Verdict{}, backoff.Permanent(err)
			}
		}
		out, err := m.Generate(ctx, prompt, model.WithTemperature(0), model.WithMaxTokens(8192))
		if err != nil {
			return Verdict{}, err
		}
		if out == nil || out.Content == "" {
			return Verdict{}, fmt.Errorf("no content in response from %s", name)
		}
		return ParseVerdict(name, out.Content)
	}
	notify := func(err error, d time.Duration) {
		log.Warn(fmt.Sprintf("  ⚠ %s attempt %d/%d failed: %v (retrying in %s)", name, attempt, e.MaxAttempts, err, d))
	}

	v, err := backoff.RetryNotifyWithData(op, e.backoff(ctx), notify)
	if err != nil {
		log.Error(fmt.Sprintf("  ✗ %s failed after %d attempts: %v", name, attempt, err))
		return Verdict{}, err
	}
	log.Infof("  ✓ %s: score=%d, completeness=%t, relevance=%t, confidence=%s",
		name, v.OverallScore, v.Completeness, v.Relevance, v.Confidence)
	return v, nil
}

func passLabel(ok bool) string {
	if ok {
		return "PASS ✓"
	}
	return "FAIL ✗"
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func yesNo(ok bool) string {
	if ok {
		return "YES"
	}
	return "NO"
}

// Comparison is the oneshot-versus-agent verdict for one scenario.
type Comparison struct {
	Winner    string
	ScoreDiff int
	Markdown  string
}

// Compare ranks the two modes by final score.
func Compare(oneshot, agent *Evaluation) Comparison {
	o, a := oneshot.Aggregated, agent.Aggregated
	diff := a.FinalScore - o.FinalScore

	var b strings.Builder
	b.WriteString("# Oneshot vs Agent Comparison\n\n")
	b.WriteString("## Aggregated Scores\n\n")
	b.WriteString("| Metric | Oneshot | Agent | Diff |\n")
	b.WriteString("|--------|---------|-------|------|\n")
	fmt.Fprintf(&b, "| **Result** | **%s** | **%s** | - |\n", passLabel(o.Pass), passLabel(a.Pass))
	fmt.Fprintf(&b, "| Final Score | %d/5 | %d/5 | %+d |\n", o.FinalScore, a.FinalScore, diff)
	fmt.Fprintf(&b, "| Avg Score | %.2f | %.2f | %.2f |\n", o.AverageScore, a.AverageScore, a.AverageScore-o.AverageScore)
	fmt.Fprintf(&b, "| Completeness (Majority) | %s | %s | - |\n", passLabel(o.CompletenessMajority), passLabel(a.CompletenessMajority))
	fmt.Fprintf(&b, "| Relevance (Majority) | %s | %s | - |\n", passLabel(o.RelevanceMajority), passLabel(a.RelevanceMajority))
	fmt.Fprintf(&b, "| Consensus | %s | %s | - |\n\n", yesNo(oneshot.Consensus), yesNo(agent.Consensus))

	b.WriteString("## Individual Model Scores\n\n")
	for _, sec := range []struct {
		title string
		ev    *Evaluation
	}{{"Oneshot", oneshot}, {"Agent", agent}} {
		fmt.Fprintf(&b, "### %s\n\n", sec.title)
		for _, m := range sec.ev.Models {
			fmt.Fprintf(&b, "- **%s**: Score %d/5, Completeness: %s, Relevance: %s, Confidence: %s\n",
				m.Model, m.OverallScore, mark(m.Completeness), mark(m.Relevance), m.Confidence)
		}
		b.WriteString("\n")
	}

	winner := "tie"
	switch {
	case diff > 0:
		winner = string(ModeAgent)
	case diff < 0:
		winner = string(ModeOneshot)
	}
	b.WriteString("## Winner\n\n")
	if winner == "tie" {
		fmt.Fprintf(&b, "**TIE** - Both modes achieved the same score (%d/5)\n\n", a.FinalScore)
	} else {
		abs := diff
		if abs < 0 {
			abs = -abs
		}
		plural := ""
		if abs > 1 {
			plural = "s"
		}
		fmt.Fprintf(&b, "**%s** mode performed better (%d point%s higher)\n\n", strings.ToUpper(winner), abs, plural)
	}

	b.WriteString("## Reasoning from Models\n\n")
	for _, sec := range []struct {
		title string
		ev    *Evaluation
	}{{"Oneshot", oneshot}, {"Agent", agent}} {
		fmt.Fprintf(&b, "### %s\n\n", sec.title)
		for _, m := range sec.ev.Models {
			fmt.Fprintf(&b, "#### %s\n%s\n\n", m.Model, m.Reasoning)
		}
	}
	return Comparison{Winner: winner, ScoreDiff: diff, Markdown: b.String()}
}
