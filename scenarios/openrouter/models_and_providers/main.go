// Command models_and_providers lists OpenRouter models and providers, then
// asks the auto router one question.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"

	"context_bench/internal/llm"
	"context_bench/internal/openrouter"
)

func main() {
	ctx := context.Background()

	m, cfg, err := llm.OpenRouterFromEnv(ctx, "openrouter/auto")
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}
	client, err := openrouter.New(cfg.LLMConfig.OpenRouterAPIKey, cfg.LLMConfig.AppURL, cfg.LLMConfig.AppTitle)
	if err != nil {
		log.Fatal(err)
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		log.Fatalf("List models: %v", err)
	}
	fmt.Printf("Model count (from list): %d\n", len(models))

	providers, err := client.ListProviders(ctx)
	if err != nil {
		log.Fatalf("List providers: %v", err)
	}
	ids := make([]string, 0, 5)
	for _, p := range providers {
		if len(ids) == 5 {
			break
		}
		ids = append(ids, p.ID())
	}
	fmt.Println("Some providers:", strings.Join(ids, ", "))

	out, err := m.Generate(ctx, []*schema.Message{
		schema.UserMessage("Name 3 benefits of model routing in one sentence."),
	})
	if err != nil {
		log.Fatalf("Completion failed: %v", err)
	}
	fmt.Println("\nAssistant:", out.Content)
}
