// Package matching finds the best providers for a service request.
//
// FindTopProviders runs the filtering tiers, scores every eligible provider
// with the configured Scorer, adds the preference bonus and returns the top
// three as ranked results.
package matching

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/filtering"
	"github.com/spigell/provider-matcher/internal/logger"
	"github.com/spigell/provider-matcher/internal/scoring"
)

// MaxResults is the size limit of a result set.
const MaxResults = 3

var ErrInvalidArgument = errors.New("invalid argument")

type Matcher struct {
	filtering *filtering.Filtering
	scorer    scoring.Scorer
	logger    *zap.Logger
}

// New wires a Matcher. Nil collaborators fall back to the default tiers and
// the rubric scorer.
func New(f *filtering.Filtering, scorer scoring.Scorer, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	if f == nil {
		f = filtering.New(filtering.DefaultTiers(), log)
	}
	if scorer == nil {
		scorer = scoring.NewRubric(log)
	}
	return &Matcher{filtering: f, scorer: scorer, logger: log}
}

// FindTopProviders returns up to MaxResults ranked providers for the request.
// Only a nil request is reported as an error; every other failure is logged
// and yields an empty result.
func (m *Matcher) FindTopProviders(ctx context.Context, req *catalog.Request, providers []*catalog.Provider) (results []*catalog.MatchingResult, err error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidArgument)
	}

	log := m.logger.With(logger.RequestFields(req)...)

	if len(providers) == 0 {
		log.Warn("no providers available for matching")
		return []*catalog.MatchingResult{}, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("matching failed",
				zap.Any("panic", rec),
				zap.Int("providers", len(providers)),
				zap.Stack("stack"),
			)
			results, err = []*catalog.MatchingResult{}, nil
		}
	}()

	criteria := filtering.CriteriaFor(req)

	eligible, tier := m.filtering.Select(criteria, providers)
	if len(eligible) == 0 {
		log.Info("no providers matched the request", zap.Int("providers", len(providers)))
		return []*catalog.MatchingResult{}, nil
	}

	candidates := make([]Candidate, 0, len(eligible))
	for _, p := range eligible {
		c := Candidate{
			Provider:  p,
			BaseScore: m.scorer.Score(ctx, p, p.Certifications),
			Bonus:     scoring.Bonus(p, criteria),
		}
		log.Debug("provider scored",
			append(logger.ProviderFields(p),
				zap.Float64("base_score", c.BaseScore),
				zap.Float64("bonus", c.Bonus),
			)...,
		)
		candidates = append(candidates, c)
	}

	ranked := Rank(candidates, MaxResults)

	results = make([]*catalog.MatchingResult, 0, len(ranked))
	for i, c := range ranked {
		results = append(results, &catalog.MatchingResult{
			RequestID:  req.ID,
			Provider:   c.Provider,
			MatchScore: c.Total(),
			Rank:       i + 1,
		})
	}

	log.Info("matching completed",
		zap.String("tier", tier),
		zap.Int("providers", len(providers)),
		zap.Int("eligible", len(eligible)),
		zap.Int("results", len(results)),
	)

	return results, nil
}
