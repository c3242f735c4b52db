// Command selector_groupchat lets a selector model route a planner, a search
// agent and an analyst through a percentage-change task.
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

const selectorPrompt = `Select exactly one next speaker.
{roles}
Conversation so far:
{history}
Candidates: {participants}
Make sure the Planner assigns tasks before others proceed.
`

const task = "Plan the steps to: find a baseline and current value via WebSearch, " +
	"have Analyst compute percentage change, and then finish."

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "gpt-4o-mini")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	planner := &team.AssistantAgent{
		AgentName: "Planner",
		Desc:      "Breaks tasks into steps; summarizes at the end. Should speak first.",
		SystemMessage: "You plan and delegate only. After all tasks are complete, " +
			"summarize findings and end with 'TERMINATE'.",
		Model: m,
	}
	searcher := &team.AssistantAgent{
		AgentName:     "WebSearch",
		Desc:          "Looks up facts with search_web_tool.",
		SystemMessage: "Use the search tool to fetch simple mock values (baseline/current).",
		Model:         m,
		Tools:         []tool.BaseTool{tools.SearchWebTool()},
	}
	analyst := &team.AssistantAgent{
		AgentName:     "Analyst",
		Desc:          "Performs calculations with percentage_change_tool.",
		SystemMessage: "Compute requested percentage changes, then answer plainly.",
		Model:         m,
		Tools:         []tool.BaseTool{tools.PercentageChangeTool()},
	}

	t, err := team.Selector(ctx, []team.Agent{planner, searcher, analyst}, m, team.SelectorOptions{
		Options: team.Options{
			Termination: team.Or(team.TextMention("TERMINATE"), team.MaxMessages(25)),
		},
		Prompt:               selectorPrompt,
		AllowRepeatedSpeaker: true,
	})
	if err != nil {
		log.Fatalf("Failed to build team: %v", err)
	}

	stream, err := t.RunStream(ctx, task)
	if err != nil {
		log.Fatalf("Failed to start team: %v", err)
	}
	if _, err := console.Team(os.Stdout, stream); err != nil {
		log.Fatalf("Team run failed: %v", err)
	}
}
