// Command structured_tools lets the model call a mock weather tool and then
// answer with a strict JSON object.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/tools"
)

const systemPrompt = "You are a helpful assistant. When you give the final answer, reply with only a JSON " +
	`object of the form {"location": string, "temperature": string, "conditions": string} and nothing else.`

type weatherAnswer struct {
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Conditions  string `json:"conditions"`
}

func main() {
	ctx := context.Background()

	m, _, err := llm.OpenRouterFromEnv(ctx, "openai/gpt-4o")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	weather := tools.CurrentWeatherTool().(tool.InvokableTool)
	info, err := weather.Info(ctx)
	if err != nil {
		log.Fatal(err)
	}
	withTools, err := m.WithTools([]*schema.ToolInfo{info})
	if err != nil {
		log.Fatal(err)
	}

	msgs := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("What's the weather in Boston today? Return a strict JSON object."),
	}

	// Step 1: the model decides whether to call the tool.
	first, err := withTools.Generate(ctx, msgs)
	if err != nil {
		log.Fatalf("First completion failed: %v", err)
	}
	answer := first
	if len(first.ToolCalls) > 0 {
		msgs = append(msgs, first)
		for _, tc := range first.ToolCalls {
			if tc.Function.Name != info.Name {
				continue
			}
			out, err := weather.InvokableRun(ctx, tc.Function.Arguments)
			if err != nil {
				log.Fatalf("Tool %s failed: %v", tc.Function.Name, err)
			}
			msgs = append(msgs, schema.ToolMessage(out, tc.ID))
		}
		// Step 2: the final structured answer.
		if answer, err = m.Generate(ctx, msgs); err != nil {
			log.Fatalf("Second completion failed: %v", err)
		}
	}

	var parsed weatherAnswer
	if err := sonic.UnmarshalString(answer.Content, &parsed); err != nil {
		fmt.Println(answer.Content)
		log.Fatalf("Answer is not the expected JSON object: %v", err)
	}
	if err := console.JSON(os.Stdout, parsed); err != nil {
		log.Fatal(err)
	}
}
