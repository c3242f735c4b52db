// Command parallel_brief plans a research brief, writes its sections in
// parallel while streaming progress events, and prints the merged report.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/workflow"
)

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o-mini")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	p, err := workflow.NewParallelBrief(ctx, m, 0)
	if err != nil {
		log.Fatalf("Failed to build brief graph: %v", err)
	}

	ctx = workflow.WithEvents(ctx, func(ev workflow.Event) {
		console.Event(os.Stdout, ev)
	})
	brief, err := p.Run(ctx, workflow.BriefInput{Topic: "small modular reactors"})
	if err != nil {
		log.Fatalf("Brief run failed: %v", err)
	}

	fmt.Println("\n=== MERGED REPORT ===")
	fmt.Println(brief.Report)
}
