package llm

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"context_bench/internal/config"
	"context_bench/internal/logger"
)

// FromEnv loads .env and the process environment, initialises the global
// logger and opens the configured chat model. A non-empty modelName
// overrides LLM_MODEL.
func FromEnv(ctx context.Context, modelName string) (model.ToolCallingChatModel, *config.Config, error) {
	return fromEnv(ctx, "", modelName)
}

// OpenRouterFromEnv is FromEnv pinned to the OpenRouter provider.
func OpenRouterFromEnv(ctx context.Context, modelName string) (model.ToolCallingChatModel, *config.Config, error) {
	return fromEnv(ctx, ProviderOpenRouter, modelName)
}

func fromEnv(ctx context.Context, provider, modelName string) (model.ToolCallingChatModel, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		return nil, nil, err
	}
	llmCfg := cfg.LLMConfig
	if provider != "" && provider != llmCfg.Provider {
		llmCfg.Provider, llmCfg.BaseURL = provider, ""
	}
	mc := FromConfig(llmCfg)
	if modelName != "" {
		mc = mc.WithModel(modelName)
	}
	m, err := NewChatModel(ctx, mc)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("provider", mc.Provider).Str("model", mc.Model).Msg("Chat model ready")
	return m, cfg, nil
}
