// Command visual_explainer sends an image URL to a vision model with web
// search and streams an explanation with related news.
package main

import (
	"context"
	"log"
	"os"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/tools"
)

const (
	imageURL     = "https://upload.wikimedia.org/wikipedia/commons/0/0c/GoldenGateBridge-001.jpg"
	instructions = "1) Identify the landmark and give a brief significance. " +
		"2) Search latest related news (2 items) with links. " +
		"3) Return a 3-point TL;DR. Format the answer in markdown."
)

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: m,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: []tool.BaseTool{tools.NewWebClient().WebSearchTool()}},
		MaxStep:          12,
	})
	if err != nil {
		log.Fatalf("Failed to create agent: %v", err)
	}

	stream, err := agent.Stream(ctx, []*schema.Message{
		schema.SystemMessage(instructions),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeText, Text: "Explain this image and fetch latest related news."},
				{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: imageURL}},
			},
		},
	})
	if err != nil {
		log.Fatalf("Agent run failed: %v", err)
	}
	if _, err := console.Deltas(os.Stdout, stream); err != nil {
		log.Fatalf("Stream failed: %v", err)
	}
}
