// Command trend_scout combines Hacker News top stories with web search to
// report emerging AI tools.
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

	m, _, err := llm.FromEnv(ctx, "gpt-4o")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}
	web := tools.NewWebClient()

	scout := &agents.Agent{
		Name: "Trend Scout",
		Instructions: "Combine Hacker News signals with web news. " +
			"De-duplicate items, verify recency, and return: " +
			"• 3 bullet takeaways\n• Links to HN + news\n• 1-sentence risk per tool. " +
			"Format the answer in markdown.",
		Tools: []tool.BaseTool{web.HackerNewsTool(), web.WebSearchTool()},
	}

	stream, err := agents.NewRunner(m).RunStreamed(ctx, scout,
		"Find the top 3 emerging AI tools from Hacker News and cross-check with latest web coverage.")
	if err != nil {
		log.Fatalf("Failed to start run: %v", err)
	}
	if _, err := console.AgentEvents(os.Stdout, stream); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}
