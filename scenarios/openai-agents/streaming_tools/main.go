// Command streaming_tools streams an agent that looks up the time in a
// timezone and evaluates an arithmetic expression.
package main

import (
	"context"
	"log"
	"os"

	"github.com/cloudwego/eino/components/tool"

	"context_bench/internal/agents"
	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/tools"
)

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	planner := &agents.Agent{
		Name: "Planner",
		Instructions: "Use tools when needed. First get the current time for the user's timezone; " +
			"then compute the requested arithmetic exactly; answer concisely.",
		Tools: []tool.BaseTool{tools.NowInTimezoneTool(nil), tools.CalcTool()},
	}

	stream, err := agents.NewRunner(m).RunStreamed(ctx, planner,
		"Tell me the current time in America/Los_Angeles and then compute 137*42.")
	if err != nil {
		log.Fatalf("Failed to start run: %v", err)
	}
	if _, err := console.AgentEvents(os.Stdout, stream); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}
