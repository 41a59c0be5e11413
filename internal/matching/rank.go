package matching

import (
	"sort"

	"github.com/spigell/provider-matcher/internal/catalog"
)

// Candidate is an eligible provider with its scores.
type Candidate struct {
	Provider  *catalog.Provider
	BaseScore float64
	Bonus     float64
}

func (c Candidate) Total() float64 {
	return c.BaseScore + c.Bonus
}

// Rank orders candidates by total score, project count and assessment score,
// all descending, with provider id ascending as the last resort. At most
// limit candidates are returned; a non-positive limit returns all of them.
func Rank(candidates []Candidate, limit int) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Total() != b.Total() {
			return a.Total() > b.Total()
		}
		if a.Provider.ProjectCount != b.Provider.ProjectCount {
			return a.Provider.ProjectCount > b.Provider.ProjectCount
		}
		if a.Provider.AssessmentScore != b.Provider.AssessmentScore {
			return a.Provider.AssessmentScore > b.Provider.AssessmentScore
		}
		return a.Provider.ID < b.Provider.ID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
