package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const (
	copywriterInstructions = "Given REQUIREMENTS, write a concise landing page: headline, 3 bullet benefits, " +
		"and one strong CTA. Output in markdown."
	translatorInstructions = "Translate the previous step's output to Spanish. Keep formatting."
)

// StepOutput is reported after every pipeline step.
type StepOutput struct {
	Step    string
	Content string
}

// CopyPipeline is a three-step chain: requirements extraction, copywriting
// and translation to Spanish.
type CopyPipeline struct {
	runnable compose.Runnable[string, string]
}

// ExtractRequirements normalises the raw product brief.
func ExtractRequirements(input string) string {
	return "REQUIREMENTS:\n" + strings.TrimSpace(input)
}

func NewCopyPipeline(ctx context.Context, m model.BaseChatModel, onStep func(StepOutput)) (*CopyPipeline, error) {
	if onStep == nil {
		onStep = func(StepOutput) {}
	}

	copyTemplate := prompt.FromMessages(schema.FString,
		schema.SystemMessage(copywriterInstructions),
		schema.UserMessage("{input}"),
	)
	translateTemplate := prompt.FromMessages(schema.FString,
		schema.SystemMessage(translatorInstructions),
		schema.UserMessage("{input}"),
	)

	asVars := func(step string) *compose.Lambda {
		return compose.InvokableLambda(func(ctx context.Context, text string) (map[string]any, error) {
			onStep(StepOutput{Step: step, Content: text})
			return map[string]any{"input": text}, nil
		})
	}
	content := compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
		return msg.Content, nil
	})

	chain := compose.NewChain[string, string]().
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, in string) (string, error) {
			return ExtractRequirements(in), nil
		})).
		AppendLambda(asVars("extract_requirements")).
		AppendChatTemplate(copyTemplate).
		AppendChatModel(m).
		AppendLambda(content).
		AppendLambda(asVars("copywriter")).
		AppendChatTemplate(translateTemplate).
		AppendChatModel(m).
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
			onStep(StepOutput{Step: "translator", Content: msg.Content})
			return msg.Content, nil
		}))

	r, err := chain.Compile(ctx, compose.WithGraphName("copy_pipeline"))
	if err != nil {
		return nil, fmt.Errorf("compile copy pipeline: %w", err)
	}
	return &CopyPipeline{runnable: r}, nil
}

func (p *CopyPipeline) Run(ctx context.Context, brief string) (string, error) {
	return p.runnable.Invoke(ctx, brief)
}
