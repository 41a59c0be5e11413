// Package scoring computes provider quality scores.
//
// The rubric scores five independent factors (certification, assessment,
// recency, frequency and monetary value) and averages whichever of them have
// usable data. Missing or out-of-range data removes a factor from the average
// instead of counting as zero.
package scoring

import (
	"context"
	"math"

	"github.com/spigell/provider-matcher/internal/catalog"
)

// Scorer computes a provider's base score given its certifications.
type Scorer interface {
	Score(ctx context.Context, provider *catalog.Provider, certifications []catalog.Certification) float64
}

const (
	FactorCertification = "certification"
	FactorAssessment    = "assessment"
	FactorRecency       = "recency"
	FactorFrequency     = "frequency"
	FactorMonetary      = "monetary"
)

// Factor is a single rubric factor that is either present with a value or absent.
type Factor struct {
	Name    string
	Value   float64
	Present bool
}

func present(name string, value float64) Factor {
	return Factor{Name: name, Value: value, Present: true}
}

func absent(name string) Factor {
	return Factor{Name: name}
}

// Mean averages present factors and rounds the result to two decimals.
// It returns 0 when no factor is present.
func Mean(factors []Factor) float64 {
	var (
		sum   float64
		count int
	)
	for _, f := range factors {
		if !f.Present {
			continue
		}
		sum += f.Value
		count++
	}

	if count == 0 {
		return 0
	}
	return Round2(sum / float64(count))
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
