// Command hil_writer drafts a README, pauses for human approval and saves
// the approved draft to output.md.
//
// The first run prints the interrupt payload and a thread ID. Resume it with
//
//	hil_writer <thread-id> approve
//	hil_writer <thread-id> "Add a security section."
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

func decision(arg string) workflow.Decision {
	if arg == "approve" {
		return workflow.Decision{Approve: true}
	}
	return workflow.Decision{Feedback: arg}
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

	w, err := workflow.NewHILWriter(ctx, m, store, "output.md")
	if err != nil {
		log.Fatalf("Failed to build writer graph: %v", err)
	}

	var (
		res *workflow.WriterResult
		it  *workflow.Interrupt
	)
	if len(os.Args) >= 3 {
		res, it, err = w.Resume(ctx, os.Args[1], decision(os.Args[2]))
	} else {
		threadID := "readme-" + uuid.NewString()
		res, it, err = w.Start(ctx, threadID, workflow.WriterInput{
			Topic:        "LangGraph-powered agents",
			Requirements: "Include setup, features, and a runnable example.",
		})
	}
	if err != nil {
		log.Fatalf("Writer run failed: %v", err)
	}

	if it != nil {
		fmt.Println("INTERRUPT PAYLOAD:")
		if err := console.Interrupt(os.Stdout, it); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nResume with: hil_writer %s approve | \"<feedback>\"\n", it.ThreadID)
		return
	}
	fmt.Printf("Saved %s after %d revision(s).\n", res.Path, res.Revisions)
}
