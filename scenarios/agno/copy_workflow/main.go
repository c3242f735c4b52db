// Command copy_workflow turns a product brief into landing page copy and
// translates it to Spanish, printing every step's output.
package main

import (
	"context"
	"fmt"
	"log"

	"context_bench/internal/llm"
	"context_bench/internal/workflow"
)

const brief = "Product: Cloud cost analyzer for Kubernetes. Audience: DevOps & platform teams. " +
	"Key value: 20% lower spend in 30 days; per-namespace showback; SOC2 compliant."

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	p, err := workflow.NewCopyPipeline(ctx, m, func(out workflow.StepOutput) {
		fmt.Printf("\n===== Step: %s =====\n%s\n", out.Step, out.Content)
	})
	if err != nil {
		log.Fatalf("Failed to build workflow: %v", err)
	}

	final, err := p.Run(ctx, brief)
	if err != nil {
		log.Fatalf("Workflow failed: %v", err)
	}
	fmt.Printf("\n===== Spec→Copy→Spanish =====\n%s\n", final)
}
