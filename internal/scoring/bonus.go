package scoring

import (
	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/filtering"
)

const (
	CostProfileBonus     = 3
	DigitalMaturityBonus = 2
	LocationBonus        = 1
)

// Bonus rewards secondary requestor preferences using the strict filter
// predicates, whichever tier admitted the provider.
func Bonus(provider *catalog.Provider, c filtering.Criteria) float64 {
	if provider == nil || c.Requestor == nil {
		return 0
	}

	var bonus float64
	if filtering.MatchesCostProfile(provider, c.Requestor.CostProfile) {
		bonus += CostProfileBonus
	}
	if filtering.MatchesDigitalMaturity(provider, c.Requestor.DigitalMaturityIndex) {
		bonus += DigitalMaturityBonus
	}
	if c.Request != nil && c.Request.LocationProximityRequired && filtering.MatchesLocation(provider, c.Requestor.Location) {
		bonus += LocationBonus
	}
	return bonus
}
