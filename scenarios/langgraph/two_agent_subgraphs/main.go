// Command two_agent_subgraphs routes a post through a writer subgraph and an
// editor subgraph and prints the edited result.
package main

import (
	"context"
	"fmt"
	"log"

	"context_bench/internal/llm"
	"context_bench/internal/workflow"
)

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o-mini")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	t, err := workflow.NewTwoAgent(ctx, m)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	out, err := t.Run(ctx, "edge AI on factory floors")
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	fmt.Println("\n=== FINAL POST ===")
	fmt.Println(out.Final)
}
