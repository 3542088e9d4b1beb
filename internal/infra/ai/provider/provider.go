// Package provider picks the ai.Client named in configuration.
package provider

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/achalasia-report/internal/config"
	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/gemini"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/openai"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/sample"
)

const (
	OpenAI = "openai"
	Gemini = "gemini"
	Sample = "sample"
)

// New builds the client for cfg.AI.Provider. A missing key is not an error here;
// the client reports it on first use so the server can still boot and serve health checks.
func New(cfg *config.Config) (ai.Client, string, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	switch name {
	case "", OpenAI:
		return openai.NewClient(openai.Config{
			APIKey:    cfg.AI.APIKey,
			BaseURL:   cfg.AI.BaseURL,
			Model:     cfg.AI.Model,
			MaxTokens: cfg.AI.MaxTokens,
		}), OpenAI, nil
	case Gemini:
		return gemini.NewClient(cfg.AI.APIKey, cfg.AI.Model), Gemini, nil
	case Sample:
		return sample.NewClient(), Sample, nil
	default:
		return nil, name, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}
