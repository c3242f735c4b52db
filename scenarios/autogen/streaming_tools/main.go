// Command streaming_tools streams a single tool-using assistant that writes a
// travel market brief from mock weather and FX tools.
package main

import (
	"context"
	"log"
	"os"

	"github.com/cloudwego/eino/components/tool"

	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/team"
	"context_bench/internal/tools"
)

const systemMessage = "You are a financial travel brief assistant. " +
	"ALWAYS call get_weather(city='Seoul') AND get_fx(pair='USD/KRW') " +
	"before you answer. Then produce 4 bullet points. " +
	"If tool output is terse, reflect to make it readable."

const task = "Plan a 30-second market brief for EUR->KRW travelers. " +
	"Summarize findings clearly."

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o-mini")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	agent := &team.AssistantAgent{
		AgentName:        "brief_bot",
		SystemMessage:    systemMessage,
		Model:            m,
		Tools:            []tool.BaseTool{tools.WeatherTool(), tools.FXTool()},
		ReflectOnToolUse: true,
	}

	stream, err := agent.RunStream(ctx, task)
	if err != nil {
		log.Fatalf("Failed to start agent: %v", err)
	}
	if _, err := console.Team(os.Stdout, stream); err != nil {
		log.Fatalf("Agent run failed: %v", err)
	}
}
