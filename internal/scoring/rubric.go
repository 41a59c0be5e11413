package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/logger"
)

const daysPerMonth = 30

// Breakdown lists every factor of a rubric score together with the final score.
type Breakdown struct {
	Factors []Factor
	Score   float64
}

// Rubric is the default Scorer.
type Rubric struct {
	logger *zap.Logger
	now    func() time.Time
}

type RubricOption func(*Rubric)

// WithClock overrides the clock used for recency.
func WithClock(now func() time.Time) RubricOption {
	return func(r *Rubric) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRubric(log *zap.Logger, opts ...RubricOption) *Rubric {
	r := &Rubric{
		logger: logger.WithFields(log, zap.String("scorer", "rubric")),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Score returns the rounded mean of the available factors. A nil provider or
// any failure while scoring yields 0.
func (r *Rubric) Score(_ context.Context, provider *catalog.Provider, certifications []catalog.Certification) (score float64) {
	if provider == nil {
		r.logger.Warn("provider is nil; returning score 0")
		return 0
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("error calculating provider score",
				append(logger.ProviderFields(provider), zap.Error(fmt.Errorf("%v", rec)))...,
			)
			score = 0
		}
	}()

	return r.Breakdown(provider, certifications).Score
}

// Breakdown scores every factor. Unlike Score it does not recover from panics.
func (r *Rubric) Breakdown(provider *catalog.Provider, certifications []catalog.Certification) Breakdown {
	if provider == nil {
		return Breakdown{}
	}

	factors := []Factor{
		certificationFactor(certifications),
		assessmentFactor(provider.AssessmentScore),
		recencyFactor(provider.LastActivityDate, r.now()),
		frequencyFactor(provider.ProjectCount),
		monetaryFactor(provider.AverageProjectValue),
	}

	for _, f := range factors {
		if !f.Present {
			r.logger.Debug("factor excluded from score",
				append(logger.ProviderFields(provider), zap.String("factor", f.Name))...,
			)
		}
	}

	return Breakdown{Factors: factors, Score: Mean(factors)}
}

func certificationFactor(certifications []catalog.Certification) Factor {
	if certifications == nil {
		return absent(FactorCertification)
	}
	for _, c := range certifications {
		if strings.TrimSpace(c.Name) != "" {
			return present(FactorCertification, 9)
		}
	}
	return present(FactorCertification, 1)
}

func assessmentFactor(score float64) Factor {
	if math.IsNaN(score) || score < 0 || score > 5 {
		return absent(FactorAssessment)
	}

	switch {
	case score < 2.26:
		return present(FactorAssessment, 1)
	case score < 3.76:
		return present(FactorAssessment, 3)
	default:
		return present(FactorAssessment, 9)
	}
}

func recencyFactor(lastActivity *time.Time, now time.Time) Factor {
	if lastActivity == nil || lastActivity.After(now) {
		return absent(FactorRecency)
	}

	months := now.Sub(*lastActivity).Hours() / 24 / daysPerMonth
	switch {
	case months > 12:
		return present(FactorRecency, 1)
	case months >= 6:
		return present(FactorRecency, 3)
	default:
		return present(FactorRecency, 6)
	}
}

func frequencyFactor(projects int) Factor {
	switch {
	case projects < 0:
		return absent(FactorFrequency)
	case projects < 24:
		return present(FactorFrequency, 1)
	case projects <= 48:
		return present(FactorFrequency, 6)
	default:
		return present(FactorFrequency, 12)
	}
}

func monetaryFactor(value float64) Factor {
	if math.IsNaN(value) || value < 0 {
		return absent(FactorMonetary)
	}

	switch {
	case value < 100_000:
		return present(FactorMonetary, 1)
	case value < 250_000:
		return present(FactorMonetary, 3)
	default:
		return present(FactorMonetary, 6)
	}
}
