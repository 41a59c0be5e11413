package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/ai"
	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/logger"
)

const maxReviewScore = 10

// Assisted blends a base score with a reviewer's assessment. Reviewer failures
// leave the base score untouched.
type Assisted struct {
	base     Scorer
	reviewer ai.Reviewer
	weight   float64
	logger   *zap.Logger
}

// NewAssisted clamps weight to [0, 1]; 0 disables the reviewer entirely.
func NewAssisted(base Scorer, reviewer ai.Reviewer, weight float64, log *zap.Logger) *Assisted {
	if math.IsNaN(weight) || weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}

	return &Assisted{
		base:     base,
		reviewer: reviewer,
		weight:   weight,
		logger:   logger.WithFields(log, zap.String("scorer", "assisted"), zap.Float64("ai_weight", weight)),
	}
}

// Score falls back to the base score when the review fails or panics.
func (a *Assisted) Score(ctx context.Context, provider *catalog.Provider, certifications []catalog.Certification) (score float64) {
	base := a.base.Score(ctx, provider, certifications)
	if provider == nil || a.reviewer == nil || a.weight == 0 {
		return base
	}

	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("error calculating provider score",
				append(logger.ProviderFields(provider), zap.Error(fmt.Errorf("%v", rec)))...,
			)
			score = base
		}
	}()

	assessment, err := a.reviewer.Review(ctx, provider, certifications)
	if err == nil && assessment == nil {
		err = errors.New("reviewer returned no assessment")
	}
	if err != nil {
		a.logger.Warn("AI review failed; keeping base score",
			append(logger.ProviderFields(provider), zap.Error(err))...,
		)
		return base
	}

	reviewed := math.Max(0, math.Min(maxReviewScore, assessment.Score))
	if math.IsNaN(assessment.Score) {
		reviewed = 0
	}

	score = Round2((1-a.weight)*base + a.weight*reviewed)
	a.logger.Debug("AI review applied",
		append(logger.ProviderFields(provider),
			zap.Float64("base_score", base),
			zap.Float64("ai_score", reviewed),
			zap.Float64("score", score),
			zap.String("reason", assessment.Reason),
		)...,
	)
	return score
}
