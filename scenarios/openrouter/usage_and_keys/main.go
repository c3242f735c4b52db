// Command usage_and_keys prints OpenRouter usage analytics and the API key
// inventory.
package main

import (
	"context"
	"fmt"
	"log"

	"context_bench/internal/config"
	"context_bench/internal/openrouter"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	client, err := openrouter.New(cfg.LLMConfig.OpenRouterAPIKey, cfg.LLMConfig.AppURL, cfg.LLMConfig.AppTitle)
	if err != nil {
		log.Fatal(err)
	}

	usage, err := client.UserActivity(ctx)
	if err != nil {
		log.Fatalf("User activity: %v", err)
	}
	fmt.Println("== User Activity (last 30 days) ==")
	for _, row := range usage {
		fmt.Printf("%s %s: requests=%d, usage=%.4f, prompt_tokens=%d, completion_tokens=%d\n",
			row.Date, row.Endpoint, row.Requests, row.Usage, row.PromptTokens, row.CompletionTokens)
	}

	keys, err := client.ListKeys(ctx)
	if err != nil {
		log.Fatalf("List keys: %v", err)
	}
	fmt.Println("\n== API Keys ==")
	for _, k := range keys {
		fmt.Printf("• %s  (hash: %s...)  enabled=%t\n", k.Name, k.ShortHash(), k.Enabled())
	}
}
