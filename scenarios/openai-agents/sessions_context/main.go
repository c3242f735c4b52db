// Command sessions_context keeps conversation history in SQLite and gives
// tools access to a local user profile that is never sent to the model.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"

	"context_bench/internal/agents"
	"context_bench/internal/llm"
	"context_bench/internal/session"
)

const (
	dbPath    = "conversation_history.db"
	sessionID = "demo_user_123"
)

type UserProfile struct {
	Name string
	City string
}

type noInput struct{}

func myCityTool() tool.BaseTool {
	t, _ := utils.InferTool("my_city", "Return the user's city from local context.",
		func(ctx context.Context, _ *noInput) (string, error) {
			p, ok := agents.ContextValue[UserProfile](ctx)
			if !ok {
				return "", fmt.Errorf("no user profile in context")
			}
			return p.City, nil
		})
	return t
}

func main() {
	ctx := context.Background()

	m, _, err := llm.FromEnv(ctx, "")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	agent := &agents.Agent{
		Name: "MemoryAgent",
		DynamicInstructions: func(ctx context.Context, _ *agents.Agent) string {
			p, _ := agents.ContextValue[UserProfile](ctx)
			return fmt.Sprintf("You are concise. The user's name is %s. Use tools when needed.", p.Name)
		},
		Tools: []tool.BaseTool{myCityTool()},
	}

	sess, err := session.NewSQLiteSession(sessionID, dbPath)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer sess.Close()

	input := strings.Join(os.Args[1:], " ")
	if input == "" {
		input = "What's my city?"
	}

	res, err := agents.NewRunner(m).Run(ctx, agent, input,
		agents.WithSession(sess),
		agents.WithContext(UserProfile{Name: "Alex", City: "Seoul"}),
	)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	fmt.Println("Answer:", res.FinalOutput)
	fmt.Println("New items this turn:", res.ItemTypes())
	fmt.Println("Next-turn input count:", len(res.ToInputList()))
}
