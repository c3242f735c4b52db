package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"context_bench/internal/bench"
	"context_bench/internal/chart"
	"context_bench/internal/llm"
	"context_bench/internal/logger"
	"context_bench/internal/openrouter"
)

var defaultTokenConfigs = []string{"nia", "context7", "deepcon"}

func (a *app) tokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <workspace> [config]",
		Short: "Count tool-result tokens of a oneshot run and append them to the config summaries",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			ws := args[0]
			configs := defaultTokenConfigs
			if len(args) == 2 {
				configs = []string{args[1]}
			}
			for _, cfg := range configs {
				counts, err := bench.CountConfigTokens(ws, cfg, a.count)
				if err != nil {
					logger.Warn().Err(err).Str("config", cfg).Msg("Skipping config")
					continue
				}
				if len(counts) == 0 {
					fmt.Fprintf(a.out, "No token counts found for %s\n", cfg)
					continue
				}
				summary := filepath.Join(ws, cfg, cfg+"_result.md")
				total, avg, err := bench.AppendTokenStats(summary, counts)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "✓ %s: %d scenarios, total %d tokens, average %d (appended to %s)\n",
					cfg, len(counts), total, avg, summary)
			}
			return nil
		},
	}
}

func (a *app) visualizeCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Render the benchmark comparison charts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			files, err := chart.Render(dir)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(a.out, "✓ Saved: %s\n", f)
			}
			fmt.Fprintf(a.out, "\nAll visualizations saved to: %s/\n", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "visualizations", "output directory")
	return cmd
}

func (a *app) modelsCommand() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models available for judging or agent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if local {
				models, err := llm.ListLocalModels(ctx, a.env.LLMConfig.OllamaHost)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Local models (%d):\n", len(models))
				for _, m := range models {
					fmt.Fprintf(a.out, "  %s  %s  %d bytes\n", m.Name, m.Family, m.Size)
				}
				return nil
			}

			cfg := a.env.LLMConfig
			client, err := openrouter.New(cfg.OpenRouterAPIKey, cfg.AppURL, cfg.AppTitle)
			if errors.Is(err, openrouter.ErrMissingAPIKey) {
				return configError("%v", err)
			}
			if err != nil {
				return err
			}
			models, err := client.ListModels(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "OpenRouter models (%d):\n", len(models))
			for _, m := range models {
				fmt.Fprintf(a.out, "  %s  ctx=%d  prompt=%s completion=%s\n",
					m.ID, m.ContextLength, m.Pricing.Prompt, m.Pricing.Completion)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "ollama", false, "list the models of the local Ollama daemon instead")
	return cmd
}

func (a *app) compareCommand() *cobra.Command {
	var runID, cfg, scenario string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the oneshot and agent evaluations of one scenario",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if runID == "" || cfg == "" || scenario == "" {
				return configError("--run-id, --config and --scenario are required")
			}
			c, path, err := bench.SaveComparison(a.bench.Paths.Workspace, runID, cfg, scenario)
			if errors.Is(err, bench.ErrNoResult) {
				return configError("%v", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Winner: %s (score difference %+d)\n", c.Winner, c.ScoreDiff)
			fmt.Fprintf(a.out, "Comparison saved: %s\n", path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&runID, "run-id", "", "run identifier")
	f.StringVar(&cfg, "config", "", "MCP config name")
	f.StringVar(&scenario, "scenario", "", "scenario id (package:scenario)")
	return cmd
}
