// Command team_termination runs a writer/critic round-robin team that stops
// when the critic approves or the message budget runs out.
package main

import (
	"context"
	"log"
	"os"

	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/team"
)

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o-mini")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	writer := &team.AssistantAgent{
		AgentName:     "writer",
		SystemMessage: "You craft concise, compelling taglines. Try once, then incorporate critic feedback.",
		Model:         m,
	}
	critic := &team.AssistantAgent{
		AgentName:     "critic",
		SystemMessage: "Review for clarity and sustainability tone. Say 'APPROVE' only when it's ready.",
		Model:         m,
	}

	t, err := team.RoundRobin(ctx, []team.Agent{writer, critic}, team.Options{
		Termination: team.Or(team.TextMention("APPROVE"), team.MaxMessages(6)),
	})
	if err != nil {
		log.Fatalf("Failed to build team: %v", err)
	}

	stream, err := t.RunStream(ctx, "Create a 6-line product tagline for a sustainable water bottle.")
	if err != nil {
		log.Fatalf("Failed to start team: %v", err)
	}
	if _, err := console.Team(os.Stdout, stream); err != nil {
		log.Fatalf("Team run failed: %v", err)
	}
}
