package ai

import (
	"context"

	"github.com/spigell/provider-matcher/internal/catalog"
)

// Assessment is a reviewer's opinion of a provider on a 0-10 scale.
type Assessment struct {
	Score  float64
	Reason string
	Raw    string
}

type Reviewer interface {
	Review(ctx context.Context, provider *catalog.Provider, certifications []catalog.Certification) (*Assessment, error)
}
