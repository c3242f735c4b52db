package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"context_bench/internal/logger"
)

// TokenCounter returns the number of tokens in text.
type TokenCounter func(text string) int

// EstimateTokens is the four-characters-per-token approximation.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

// Tiktoken counts with the cl100k_base encoding. When the encoding cannot be
// loaded it falls back to EstimateTokens.
func Tiktoken(text string) int {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding("cl100k_base")
		if encErr != nil {
			logger.Warn().Err(encErr).Msg("tiktoken unavailable, estimating tokens")
		}
	})
	if encErr != nil {
		return EstimateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

const toolResultMarker = "## Tool Result"

// ExtractToolResult returns everything after the "## Tool Result" heading,
// or false when the section is missing or empty.
func ExtractToolResult(content string) (string, bool) {
	i := strings.Index(content, toolResultMarker)
	if i < 0 {
		return "", false
	}
	rest := content[i+len(toolResultMarker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		rest = ""
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}

// TokenCount is the tool-result size of one scenario.
type TokenCount struct {
	ScenarioID string
	Tokens     int
}

// CountConfigTokens reads <workspace>/oneshot/<config>/*/oneshot_result.md.
func CountConfigTokens(workspace, configName string, count TokenCounter) ([]TokenCount, error) {
	dir := filepath.Join(workspace, string(ModeOneshot), configName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("oneshot directory not found: %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []TokenCount
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name(), OneshotResultFile))
		if err != nil {
			logger.Warn().Str("scenario", e.Name()).Msg("Missing oneshot_result.md")
			continue
		}
		text, ok := ExtractToolResult(string(data))
		if !ok {
			logger.Warn().Str("scenario", e.Name()).Msg("No Tool Result section found")
			continue
		}
		out = append(out, TokenCount{ScenarioID: e.Name(), Tokens: count(text)})
	}
	return out, nil
}

// TokenTable renders the token statistics section.
func TokenTable(counts []TokenCount) (string, int, int) {
	p := message.NewPrinter(language.English)
	total := 0
	for _, c := range counts {
		total += c.Tokens
	}
	avg := 0
	if len(counts) > 0 {
		avg = int(float64(total)/float64(len(counts)) + 0.5)
	}

	var b strings.Builder
	b.WriteString("\n\n---\n\n")
	b.WriteString("## 📊 Token Usage Statistics\n\n")
	b.WriteString("| Scenario | Token Count |\n")
	b.WriteString("|----------|-------------|\n")
	for _, c := range counts {
		b.WriteString(p.Sprintf("| %s | %d |\n", c.ScenarioID, c.Tokens))
	}
	b.WriteString(p.Sprintf("| **TOTAL** | **%d** |\n", total))
	b.WriteString(p.Sprintf("| **AVERAGE** | **%d** |\n", avg))
	return b.String(), total, avg
}

// AppendTokenStats appends the token table to an existing summary file.
func AppendTokenStats(path string, counts []TokenCount) (total, avg int, err error) {
	if len(counts) == 0 {
		return 0, 0, fmt.Errorf("no token counts to append to %s", path)
	}
	table, total, avg := TokenTable(counts)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(table); err != nil {
		return 0, 0, fmt.Errorf("append token stats: %w", err)
	}
	return total, avg, nil
}
