// Command hitl_persist pauses a one-agent team after its first draft, saves
// the team state to disk and resumes from it with audience feedback on the
// next run.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/team"
)

const statePath = "email_team_state.json"

func runOnce(ctx context.Context, t *team.Team, task string) error {
	stream, err := t.RunStream(ctx, task)
	if err != nil {
		return err
	}
	_, err = console.Team(os.Stdout, stream)
	return err
}

func saveState(t *team.Team) error {
	data, err := sonic.Marshal(t.SaveState())
	if err != nil {
		return fmt.Errorf("marshal team state: %w", err)
	}
	return os.WriteFile(statePath, data, 0o644)
}

func loadState(t *team.Team) error {
	data, err := os.ReadFile(statePath)
	if err != nil {
		return err
	}
	var st team.State
	if err := sonic.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("parse %s: %w", statePath, err)
	}
	t.LoadState(st)
	return nil
}

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o-mini")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	emailer := &team.AssistantAgent{
		AgentName:     "emailer",
		SystemMessage: "Write concise cold emails. After your first draft, await audience feedback.",
		Model:         m,
	}
	// One turn per run leaves room for human feedback in between.
	t, err := team.RoundRobin(ctx, []team.Agent{emailer}, team.Options{MaxTurns: 1})
	if err != nil {
		log.Fatalf("Failed to build team: %v", err)
	}

	if _, err := os.Stat(statePath); errors.Is(err, os.ErrNotExist) {
		if err := runOnce(ctx, t, "Propose a 2-step cold-email for a new product launch. Keep it friendly."); err != nil {
			log.Fatalf("Team run failed: %v", err)
		}
		if err := saveState(t); err != nil {
			log.Fatalf("Failed to save state: %v", err)
		}
		fmt.Println("\n--- PAUSED: state saved to disk. Rerun this script to resume. ---")
		return
	}

	if err := loadState(t); err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}
	fmt.Print("Audience feedback (e.g., 'B2B fintech founders'): ")
	audience, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	audience = strings.TrimSpace(audience)

	if err := runOnce(ctx, t, "Refine the cold email for this audience: "+audience); err != nil {
		log.Fatalf("Team run failed: %v", err)
	}
	if err := os.Remove(statePath); err != nil {
		log.Fatalf("Failed to remove state: %v", err)
	}
}
