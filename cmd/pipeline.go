package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/ai"
	"github.com/spigell/provider-matcher/internal/ai/gemini"
	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/filtering"
	"github.com/spigell/provider-matcher/internal/scoring"
	"github.com/spigell/provider-matcher/internal/secrets"
)

const (
	StrategyRubric   = "rubric"
	StrategyAssisted = "assisted"

	defaultAIWeight = 0.3
)

func loadDataset(config *Config) (*catalog.Dataset, error) {
	path := strings.TrimSpace(config.Dataset)
	if path == "" {
		return nil, errors.New("dataset is not configured (set 'dataset' in the config, --dataset or PROVIDER_MATCHER_DATASET)")
	}
	return catalog.LoadDataset(path)
}

// prepareFiltering builds the default tiers and disables the filters listed in
// the config.
func prepareFiltering(config *Config, log *zap.Logger) (*filtering.Filtering, error) {
	tiers := filtering.DefaultTiers()

	if config.Filtering != nil {
		for _, d := range config.Filtering.Disabled {
			name := strings.TrimSpace(d.Name)
			reason := strings.TrimSpace(d.Reason)
			if reason == "" {
				reason = "disabled in config"
			}
			if !filtering.DisableByName(tiers, name, reason) {
				return nil, fmt.Errorf("unknown filter in filtering.disabled: %q", d.Name)
			}
			log.Info("filter disabled", zap.String("filter", name), zap.String("reason", reason))
		}
	}

	return filtering.New(tiers, log), nil
}

// prepareScorer returns the rubric scorer or, for the assisted strategy, the
// rubric blended with a Gemini review.
func prepareScorer(ctx context.Context, config *Config, rubric *scoring.Rubric, log *zap.Logger) (scoring.Scorer, error) {
	strategy := StrategyRubric
	if config.Scoring != nil && strings.TrimSpace(config.Scoring.Strategy) != "" {
		strategy = strings.ToLower(strings.TrimSpace(config.Scoring.Strategy))
	}

	switch strategy {
	case StrategyRubric:
		return rubric, nil
	case StrategyAssisted:
		aiConfig := config.Scoring.AI
		if aiConfig == nil {
			aiConfig = &AIConfig{}
		}

		reviewer, err := newGeminiReviewer(ctx, aiConfig, log)
		if err != nil {
			return nil, fmt.Errorf("building ai reviewer: %w", err)
		}

		weight := aiConfig.Weight
		if weight == 0 {
			weight = defaultAIWeight
		}

		return scoring.NewAssisted(rubric, reviewer, weight, log), nil
	default:
		return nil, fmt.Errorf("unsupported scoring strategy: %s", strategy)
	}
}

func newGeminiReviewer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Reviewer, error) {
	gc := cfg.Gemini
	if gc == nil {
		gc = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: gc.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set scoring.ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gc.Model, gc.MaxRetries, log)
	if err != nil {
		return nil, err
	}

	return gemini.NewReviewer(generator, gc.MaxLogLength, log.With(zap.String("model", generator.Model()))), nil
}
