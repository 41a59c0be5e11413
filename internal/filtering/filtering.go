package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/catalog"
)

// Criteria is what providers are checked against.
type Criteria struct {
	Request   *catalog.Request
	Requestor *catalog.Requestor
}

// CriteriaFor builds criteria from a request and its embedded requestor.
func CriteriaFor(req *catalog.Request) Criteria {
	c := Criteria{Request: req}
	if req != nil {
		c.Requestor = req.Requestor
	}
	return c
}

// Filter represents a single eligibility predicate applied to providers.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(c Criteria, providers []*catalog.Provider) ([]*catalog.Provider, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Tier is a named conjunction of filters.
type Tier struct {
	Name    string
	Filters []Filter
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
}

// TierStatus describes a tier and every filter it runs.
type TierStatus struct {
	Name    string
	Filters []Status
}

// Filtering runs tiers in order until one of them admits a provider.
type Filtering struct {
	tiers  []Tier
	logger *zap.Logger
}

func New(tiers []Tier, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtering{tiers: tiers, logger: logger}
}

func (f *Filtering) Tiers() []Tier {
	return f.tiers
}

// Select applies every tier to the full provider pool in turn and returns the
// first non-empty result with the name of the tier that produced it. An empty
// slice and an empty tier name mean no tier admitted anyone.
func (f *Filtering) Select(c Criteria, providers []*catalog.Provider) ([]*catalog.Provider, string) {
	for i, tier := range f.tiers {
		eligible := Run(f.logger, tier, c, providers)
		if len(eligible) > 0 {
			return eligible, tier.Name
		}

		if i < len(f.tiers)-1 {
			f.logger.Info("tier produced no providers; falling back",
				zap.String("tier", tier.Name),
				zap.String("next_tier", f.tiers[i+1].Name),
			)
		}
	}

	return []*catalog.Provider{}, ""
}

// Run executes the filters of a tier sequentially over a copy of providers.
func Run(logger *zap.Logger, tier Tier, c Criteria, providers []*catalog.Provider) []*catalog.Provider {
	if logger == nil {
		logger = zap.NewNop()
	}

	left := make([]*catalog.Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			left = append(left, p)
		}
	}

	for _, step := range tier.Filters {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("tier", tier.Name), zap.String("name", step.Name()))
			continue
		}

		next, info := step.Apply(c, left)
		logger.Debug("filter step",
			zap.String("tier", tier.Name),
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		left = next
		if len(left) == 0 {
			break
		}
	}

	return left
}

// DisableByName marks filters with the provided name as disabled in every tier.
func DisableByName(tiers []Tier, name, reason string) bool {
	found := false
	for _, tier := range tiers {
		for _, step := range tier.Filters {
			if step.Name() == name {
				step.Disable(reason)
				found = true
			}
		}
	}
	return found
}

// Describe returns status entries for the provided tiers.
func Describe(tiers []Tier) []TierStatus {
	statuses := make([]TierStatus, 0, len(tiers))
	for _, tier := range tiers {
		ts := TierStatus{Name: tier.Name, Filters: make([]Status, 0, len(tier.Filters))}
		for _, step := range tier.Filters {
			if reporter, ok := step.(interface{ Status() Status }); ok {
				ts.Filters = append(ts.Filters, reporter.Status())
				continue
			}
			ts.Filters = append(ts.Filters, Status{Name: step.Name(), Enabled: step.IsEnabled()})
		}
		statuses = append(statuses, ts)
	}
	return statuses
}
