// Command content_team has a leader model delegate a launch blog post to a
// planner, a researcher with web search and a writer.
package main

import (
	"context"
	"log"
	"os"

	"github.com/cloudwego/eino/components/tool"

	"context_bench/internal/console"
	"context_bench/internal/llm"
	"context_bench/internal/team"
	"context_bench/internal/tools"
)

const leaderPrompt = `Coordinate, delegate to members, and produce a cohesive final output.
{roles}

Conversation so far:
{history}

Pick the member who should act next from {participants}. The Planner goes first
and the Writer delivers the final post. Reply with the member name only.
`

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}
	web := tools.NewWebClient()

	planner := &team.AssistantAgent{
		AgentName: "Planner",
		Desc:      "Define persona, messaging angle, and outline",
		SystemMessage: "Decide on a clear buyer persona and messaging. " +
			"Produce a concise outline with section goals.",
		Model: m,
	}
	researcher := &team.AssistantAgent{
		AgentName: "Researcher",
		Desc:      "Find credible references",
		SystemMessage: "Search the web for relevant sources (eco materials, sustainability, competitors). " +
			"Return 3–5 high-quality links with 1-line justifications.",
		Model:            m,
		Tools:            []tool.BaseTool{web.WebSearchTool()},
		ReflectOnToolUse: true,
	}
	writer := &team.AssistantAgent{
		AgentName: "Writer",
		Desc:      "Draft final post",
		SystemMessage: "Write a 1-page blog post in markdown. " +
			"Cite the Researcher's links inline. Keep tone warm, credible, and benefit-led. " +
			"End the post with DONE.",
		Model: m,
	}

	t, err := team.Selector(ctx, []team.Agent{planner, researcher, writer}, m, team.SelectorOptions{
		Options: team.Options{
			Termination: team.Or(team.TextMention("DONE"), team.MaxMessages(8)),
		},
		Prompt: leaderPrompt,
	})
	if err != nil {
		log.Fatalf("Failed to build team: %v", err)
	}

	stream, err := t.RunStream(ctx, "Create a launch blog post for our eco-friendly stainless water bottle")
	if err != nil {
		log.Fatalf("Failed to start team: %v", err)
	}
	if _, err := console.Team(os.Stdout, stream); err != nil {
		log.Fatalf("Team run failed: %v", err)
	}
}
