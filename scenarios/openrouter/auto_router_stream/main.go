// Command auto_router_stream streams a completion from the OpenRouter auto
// router with app attribution headers.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cloudwego/eino/schema"

	"context_bench/internal/console"
	"context_bench/internal/llm"
)

func main() {
	ctx := context.Background()

	m, _, err := llm.OpenRouterFromEnv(ctx, "openrouter/auto")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	stream, err := m.Stream(ctx, []*schema.Message{
		schema.UserMessage("Write a cheerful 2‑sentence haiku about TypeScript."),
	})
	if err != nil {
		log.Fatalf("Stream failed: %v", err)
	}
	if _, err := console.Deltas(os.Stdout, stream); err != nil {
		log.Fatalf("Stream failed: %v", err)
	}
	fmt.Println("--- done ---")
}
