package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// LocalModel is one model pulled into the local Ollama daemon.
type LocalModel struct {
	Name   string
	Size   int64
	Family string
}

// ListLocalModels asks the Ollama daemon at host which models are available.
func ListLocalModels(ctx context.Context, host string) ([]LocalModel, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	client := api.NewClient(base, http.DefaultClient)

	resp, err := client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ollama models: %w", err)
	}

	models := make([]LocalModel, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, LocalModel{Name: m.Name, Size: m.Size, Family: m.Details.Family})
	}
	return models, nil
}
