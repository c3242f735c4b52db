// Package agents runs single agents with tools, handoffs, input guardrails
// and optional session history on top of eino.
package agents

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"context_bench/internal/guardrail"
)

// InstructionsFunc builds the system prompt at run time.
type InstructionsFunc func(ctx context.Context, a *Agent) string

type Agent struct {
	Name                string
	Instructions        string
	DynamicInstructions InstructionsFunc
	// HandoffDescription is shown to routers that can hand off to this agent.
	HandoffDescription string
	// Model overrides the runner's model.
	Model           model.ToolCallingChatModel
	Tools           []tool.BaseTool
	Handoffs        []*Agent
	InputGuardrails []guardrail.Guardrail
}

func (a *Agent) instructions(ctx context.Context) string {
	if a.DynamicInstructions != nil {
		return a.DynamicInstructions(ctx, a)
	}
	return a.Instructions
}

// TransferToolName is the tool a router calls to hand off to a.
func (a *Agent) TransferToolName() string {
	return "transfer_to_" + snake(a.Name)
}

func (a *Agent) transferTool() *schema.ToolInfo {
	desc := fmt.Sprintf("Handoff to the %s agent to handle the request.", a.Name)
	if a.HandoffDescription != "" {
		desc += " " + a.HandoffDescription
	}
	return &schema.ToolInfo{Name: a.TransferToolName(), Desc: desc}
}

func snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
