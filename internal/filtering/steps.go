package filtering

import (
	"strings"

	"github.com/spigell/provider-matcher/internal/catalog"
)

const (
	ServiceFilter         = "service"
	CapacityFilter        = "capacity"
	CostProfileFilter     = "cost_profile"
	DigitalMaturityFilter = "digital_maturity"
	LocationFilter        = "location"

	StrictTier  = "strict"
	RelaxedTier = "relaxed"
)

var costProfileBuckets = map[catalog.CostProfile][]catalog.SizeBucket{
	catalog.CostProfileLow:    {catalog.SizeVerySmall, catalog.SizeSmall},
	catalog.CostProfileMedium: {catalog.SizeSmall, catalog.SizeSME},
	catalog.CostProfileHigh:   {catalog.SizeSME, catalog.SizeBig},
}

// HasService reports whether the provider offers the service.
func HasService(p *catalog.Provider, serviceID int) bool {
	return p.SkillFor(serviceID) != nil
}

// MeetsCapacity reports whether the provider's skill for the requested service
// declares enough user capacity. Requests with no user count always pass.
func MeetsCapacity(p *catalog.Provider, req *catalog.Request) bool {
	if req == nil || req.NumberOfUsers <= 0 {
		return true
	}

	skill := p.SkillFor(req.ServiceID)
	if skill == nil || skill.MaxUsersSupported == nil {
		return false
	}

	return *skill.MaxUsersSupported >= req.NumberOfUsers
}

// MatchesCostProfile reports whether the provider's size bucket suits the profile.
func MatchesCostProfile(p *catalog.Provider, profile catalog.CostProfile) bool {
	if p == nil {
		return false
	}
	bucket := p.SizeBucket()
	for _, allowed := range costProfileBuckets[profile] {
		if allowed == bucket {
			return true
		}
	}
	return false
}

// MatchesDigitalMaturity compares the requestor's maturity index with the
// maturity stage of the first provider skill that carries a service. A stage
// of 0 means unset and never matches.
func MatchesDigitalMaturity(p *catalog.Provider, requestorMaturity int) bool {
	if p == nil {
		return false
	}

	for _, skill := range p.Skills {
		if skill.Service == nil {
			continue
		}
		stage := skill.Service.MaturityStage
		if stage == 0 {
			return false
		}
		diff := stage - requestorMaturity
		return diff >= -1 && diff <= 1
	}

	return false
}

// MatchesLocation compares locations case-insensitively without any normalization.
func MatchesLocation(p *catalog.Provider, location string) bool {
	if p == nil {
		return false
	}
	return strings.EqualFold(p.Location, location)
}

// MatchFunc decides whether a single provider passes a filter.
type MatchFunc func(p *catalog.Provider, c Criteria) bool

type predicateFilter struct {
	name     string
	match    MatchFunc
	disabled bool
	reason   string
}

// NewPredicate wraps a MatchFunc into a Filter.
func NewPredicate(name string, match MatchFunc) Filter {
	return &predicateFilter{name: name, match: match}
}

func (f *predicateFilter) Name() string { return f.name }

func (f *predicateFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *predicateFilter) IsEnabled() bool { return !f.disabled }

func (f *predicateFilter) Apply(c Criteria, providers []*catalog.Provider) ([]*catalog.Provider, Step) {
	kept := make([]*catalog.Provider, 0, len(providers))
	for _, p := range providers {
		if f.match(p, c) {
			kept = append(kept, p)
		}
	}
	return kept, Step{Initial: len(providers), Dropped: len(providers) - len(kept), Left: len(kept)}
}

func (f *predicateFilter) Status() Status {
	return Status{Name: f.name, Enabled: !f.disabled, Reason: f.reason}
}

// NewService keeps providers offering the requested service.
func NewService() Filter {
	return NewPredicate(ServiceFilter, func(p *catalog.Provider, c Criteria) bool {
		return c.Request != nil && HasService(p, c.Request.ServiceID)
	})
}

// NewCapacity keeps providers able to serve the requested number of users.
func NewCapacity() Filter {
	return NewPredicate(CapacityFilter, func(p *catalog.Provider, c Criteria) bool {
		return MeetsCapacity(p, c.Request)
	})
}

// NewCostProfile keeps providers whose size suits the requestor's cost profile.
func NewCostProfile() Filter {
	return NewPredicate(CostProfileFilter, func(p *catalog.Provider, c Criteria) bool {
		return c.Requestor != nil && MatchesCostProfile(p, c.Requestor.CostProfile)
	})
}

// NewDigitalMaturity keeps providers within one maturity stage of the requestor.
func NewDigitalMaturity() Filter {
	return NewPredicate(DigitalMaturityFilter, func(p *catalog.Provider, c Criteria) bool {
		return c.Requestor != nil && MatchesDigitalMaturity(p, c.Requestor.DigitalMaturityIndex)
	})
}

// NewLocation keeps providers in the requestor's location when the request
// asks for proximity, and everyone otherwise.
func NewLocation() Filter {
	return NewPredicate(LocationFilter, func(p *catalog.Provider, c Criteria) bool {
		if c.Request == nil || !c.Request.LocationProximityRequired {
			return true
		}
		return c.Requestor != nil && MatchesLocation(p, c.Requestor.Location)
	})
}

// DefaultTiers returns the strict tier followed by the relaxed one. Both tiers
// share the service and capacity filter instances, so disabling one by name
// affects the two tiers alike.
func DefaultTiers() []Tier {
	service := NewService()
	capacity := NewCapacity()

	return []Tier{
		{
			Name:    StrictTier,
			Filters: []Filter{service, capacity, NewCostProfile(), NewDigitalMaturity(), NewLocation()},
		},
		{
			Name:    RelaxedTier,
			Filters: []Filter{service, capacity},
		},
	}
}
