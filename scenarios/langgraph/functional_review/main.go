// Command functional_review composes a summary from bullet points and pauses
// for review. Resume a thread with approve, reject or edit text:
//
//	functional_review <thread-id> approve
//	functional_review <thread-id> reject
//	functional_review <thread-id> "Tighten the intro"
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"context_bench/internal/checkpoint"
	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/workflow"
)

const bullets = "- scope A\n- scope B\n- benefits\n"

func decision(arg string) workflow.ReviewDecision {
	switch arg {
	case "approve":
		return workflow.ReviewDecision{Approve: true}
	case "reject":
		return workflow.ReviewDecision{}
	}
	return workflow.ReviewDecision{Edits: arg}
}

func main() {
	ctx := context.Background()

	m, cfg, err := llm.FromEnv(ctx, "gpt-4o-mini")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}
	store, closeStore, err := checkpoint.Open(ctx, cfg.StorageConfig.RedisURL, cfg.StorageConfig.CheckpointDir)
	if err != nil {
		log.Fatalf("Failed to open checkpoint store: %v", err)
	}
	defer closeStore()

	rv, err := workflow.NewReview(ctx, m, store)
	if err != nil {
		log.Fatalf("Failed to build review workflow: %v", err)
	}

	var (
		res *workflow.ReviewResult
		it  *workflow.Interrupt
	)
	if len(os.Args) >= 3 {
		res, it, err = rv.Resume(ctx, os.Args[1], decision(os.Args[2]))
	} else {
		res, it, err = rv.Start(ctx, "doc-"+uuid.NewString(), bullets)
	}
	if err != nil {
		log.Fatalf("Review run failed: %v", err)
	}

	if it != nil {
		if err := console.Interrupt(os.Stdout, it); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nResume with: functional_review %s approve | reject | \"<edits>\"\n", it.ThreadID)
		return
	}
	if err := console.JSON(os.Stdout, res); err != nil {
		log.Fatal(err)
	}
}
