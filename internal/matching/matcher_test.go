package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/provider-matcher/internal/ai"
	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/filtering"
	"github.com/spigell/provider-matcher/internal/scoring"
)

// scoreByID returns a fixed base score per provider id.
type scoreByID map[int]float64

func (s scoreByID) Score(_ context.Context, p *catalog.Provider, _ []catalog.Certification) float64 {
	return s[p.ID]
}

type constScorer float64

func (c constScorer) Score(context.Context, *catalog.Provider, []catalog.Certification) float64 {
	return float64(c)
}

type panicScorer struct{}

func (panicScorer) Score(context.Context, *catalog.Provider, []catalog.Certification) float64 {
	panic("scorer exploded")
}

func intPtr(v int) *int { return &v }

func skill(serviceID int, maxUsers *int, stage int) catalog.ProviderSkill {
	s := catalog.ProviderSkill{ServiceID: serviceID, MaxUsersSupported: maxUsers}
	if stage > 0 {
		s.Service = &catalog.Service{ID: serviceID, MaturityStage: stage}
	}
	return s
}

func newMatcher(scorer scoring.Scorer, log *zap.Logger) *Matcher {
	return New(filtering.New(filtering.DefaultTiers(), log), scorer, log)
}

func providerIDs(results []*catalog.MatchingResult) []int {
	ids := make([]int, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Provider.ID)
	}
	return ids
}

func TestFindTopProvidersExactMatches(t *testing.T) {
	req := &catalog.Request{
		ID:                        1,
		ServiceID:                 1,
		NumberOfUsers:             10,
		LocationProximityRequired: true,
		Requestor: &catalog.Requestor{
			CostProfile:          catalog.CostProfileMedium,
			DigitalMaturityIndex: 3,
			Location:             "Athens",
		},
	}
	providers := []*catalog.Provider{
		{ID: 1, EmployeeCount: 40, Location: "Athens", ProjectCount: 30, AssessmentScore: 4, Skills: []catalog.ProviderSkill{skill(1, intPtr(20), 3)}},
		{ID: 2, EmployeeCount: 100, Location: "Athens", ProjectCount: 25, AssessmentScore: 3.5, Skills: []catalog.ProviderSkill{skill(1, intPtr(15), 4)}},
	}

	results, err := newMatcher(scoreByID{1: 8, 2: 7}, nil).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, []int{1, 2}, providerIDs(results))
	require.Equal(t, 1, results[0].Rank)
	require.Equal(t, 2, results[1].Rank)
	// Both providers earn the full bonus: cost 3, maturity 2, location 1.
	require.Equal(t, 14.0, results[0].MatchScore)
	require.Equal(t, 13.0, results[1].MatchScore)
	require.Equal(t, 1, results[0].RequestID)
}

func TestFindTopProvidersNoServiceMatch(t *testing.T) {
	req := &catalog.Request{ServiceID: 99, Requestor: &catalog.Requestor{CostProfile: catalog.CostProfileLow}}
	providers := []*catalog.Provider{
		{ID: 1, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
		{ID: 2, EmployeeCount: 5, Skills: []catalog.ProviderSkill{skill(1, intPtr(100), 2)}},
	}

	core, observed := observer.New(zapcore.InfoLevel)
	results, err := newMatcher(constScorer(5), zap.New(core)).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
	require.Equal(t, 1, observed.FilterMessage("no providers matched the request").Len())
}

func TestFindTopProvidersFewerThanThree(t *testing.T) {
	req := &catalog.Request{ServiceID: 1, Requestor: &catalog.Requestor{CostProfile: catalog.CostProfileHigh}}
	providers := []*catalog.Provider{
		{ID: 1, EmployeeCount: 300, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
		{ID: 2, EmployeeCount: 200, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
	}

	results, err := newMatcher(constScorer(5), nil).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 1, results[0].Rank)
	require.Equal(t, 2, results[1].Rank)
}

func TestFindTopProvidersTruncatesToThree(t *testing.T) {
	req := &catalog.Request{ServiceID: 1, Requestor: &catalog.Requestor{CostProfile: catalog.CostProfileLow}}
	providers := make([]*catalog.Provider, 0, 6)
	scores := scoreByID{}
	for id := 1; id <= 6; id++ {
		providers = append(providers, &catalog.Provider{ID: id, EmployeeCount: 5, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}})
		scores[id] = float64(id)
	}

	results, err := newMatcher(scores, nil).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Equal(t, []int{6, 5, 4}, providerIDs(results))
	for i, r := range results {
		require.Equal(t, i+1, r.Rank)
	}
}

func TestFindTopProvidersProperRanking(t *testing.T) {
	req := &catalog.Request{ServiceID: 1, Requestor: &catalog.Requestor{CostProfile: catalog.CostProfileMedium}}
	providers := []*catalog.Provider{
		{ID: 1, ProjectCount: 10, AssessmentScore: 2, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
		{ID: 2, ProjectCount: 20, AssessmentScore: 3, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
		{ID: 3, ProjectCount: 15, AssessmentScore: 4, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
	}

	results, err := newMatcher(scoreByID{1: 6, 2: 8, 3: 7}, nil).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 1}, providerIDs(results))
}

func TestFindTopProvidersUserCapacity(t *testing.T) {
	req := &catalog.Request{ServiceID: 1, NumberOfUsers: 50, Requestor: &catalog.Requestor{CostProfile: catalog.CostProfileLow}}
	providers := []*catalog.Provider{
		{ID: 1, EmployeeCount: 5, Skills: []catalog.ProviderSkill{skill(1, intPtr(30), 0)}},
		{ID: 2, EmployeeCount: 8, Skills: []catalog.ProviderSkill{skill(1, intPtr(60), 0)}},
	}

	results, err := newMatcher(constScorer(5), nil).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Equal(t, []int{2}, providerIDs(results))
}

func TestFindTopProvidersRelaxedFallback(t *testing.T) {
	req := &catalog.Request{
		ServiceID:                 1,
		LocationProximityRequired: true,
		Requestor:                 &catalog.Requestor{CostProfile: catalog.CostProfileHigh, Location: "Thessaloniki"},
	}
	providers := []*catalog.Provider{
		{ID: 1, EmployeeCount: 300, Location: "Athens", Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
	}

	core, observed := observer.New(zapcore.InfoLevel)
	results, err := newMatcher(constScorer(5), zap.New(core)).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// Relaxed admission still earns the cost profile bonus.
	require.Equal(t, 8.0, results[0].MatchScore)

	completed := observed.FilterMessage("matching completed").All()
	require.Len(t, completed, 1)
	require.Equal(t, filtering.RelaxedTier, completed[0].ContextMap()["tier"])
	require.Equal(t, 1, observed.FilterMessage("tier produced no providers; falling back").Len())
}

func TestFindTopProvidersStrictWinsOverRelaxed(t *testing.T) {
	req := &catalog.Request{
		ServiceID: 1,
		Requestor: &catalog.Requestor{CostProfile: catalog.CostProfileLow, DigitalMaturityIndex: 2},
	}
	providers := []*catalog.Provider{
		{ID: 1, EmployeeCount: 5, Skills: []catalog.ProviderSkill{skill(1, nil, 2)}},
		{ID: 2, EmployeeCount: 500, Skills: []catalog.ProviderSkill{skill(1, nil, 2)}},
		{ID: 3, EmployeeCount: 5, Skills: []catalog.ProviderSkill{skill(1, nil, 4)}},
	}

	// The relaxed tier would admit all three; strict admits only provider 1.
	core, observed := observer.New(zapcore.InfoLevel)
	results, err := newMatcher(scoreByID{1: 1, 2: 9, 3: 9}, zap.New(core)).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Equal(t, []int{1}, providerIDs(results))
	require.Equal(t, 0, observed.FilterMessage("tier produced no providers; falling back").Len())
}

func TestFindTopProvidersNilRequest(t *testing.T) {
	results, err := newMatcher(constScorer(1), nil).FindTopProviders(context.Background(), nil, []*catalog.Provider{{ID: 1}})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	require.Nil(t, results)
}

func TestFindTopProvidersEmptyPool(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	m := newMatcher(panicScorer{}, zap.New(core))

	for _, pool := range [][]*catalog.Provider{nil, {}} {
		results, err := m.FindTopProviders(context.Background(), &catalog.Request{ServiceID: 1}, pool)
		require.NoError(t, err)
		require.NotNil(t, results)
		require.Empty(t, results)
	}
	require.Equal(t, 2, observed.FilterMessage("no providers available for matching").Len())
}

func TestFindTopProvidersRecoversFromPanics(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)
	req := &catalog.Request{ServiceID: 1, Requestor: &catalog.Requestor{}}
	providers := []*catalog.Provider{{ID: 1, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}}}

	results, err := newMatcher(panicScorer{}, zap.New(core)).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
	require.Equal(t, 1, observed.FilterMessage("matching failed").Len())
}

func TestFindTopProvidersNilRequestorUsesRelaxedTier(t *testing.T) {
	req := &catalog.Request{ServiceID: 1}
	providers := []*catalog.Provider{{ID: 7, Skills: []catalog.ProviderSkill{skill(1, nil, 3)}}}

	results, err := New(nil, constScorer(2.5), nil).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 2.5, results[0].MatchScore)
}

func TestFindTopProvidersDefaultScorer(t *testing.T) {
	req := &catalog.Request{ServiceID: 1, Requestor: &catalog.Requestor{CostProfile: catalog.CostProfileLow, DigitalMaturityIndex: 3}}
	providers := []*catalog.Provider{{
		ID:                  1,
		EmployeeCount:       5,
		AssessmentScore:     3,
		ProjectCount:        30,
		AverageProjectValue: 50_000,
		Certifications:      []catalog.Certification{},
		Skills:              []catalog.ProviderSkill{skill(1, nil, 3)},
	}}

	results, err := New(nil, nil, nil).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// Base 2.75 plus cost (3) and maturity (2) bonuses.
	require.Equal(t, 7.75, results[0].MatchScore)
}

// panicOnReviewer rates every provider 10 except the one it panics on.
type panicOnReviewer int

func (id panicOnReviewer) Review(_ context.Context, p *catalog.Provider, _ []catalog.Certification) (*ai.Assessment, error) {
	if p.ID == int(id) {
		panic("review exploded")
	}
	return &ai.Assessment{Score: 10}, nil
}

func TestFindTopProvidersKeepsOtherResultsWhenOneReviewPanics(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)
	log := zap.New(core)

	req := &catalog.Request{ServiceID: 1}
	providers := []*catalog.Provider{
		{ID: 1, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
		{ID: 2, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
		{ID: 3, Skills: []catalog.ProviderSkill{skill(1, nil, 0)}},
	}
	scorer := scoring.NewAssisted(scoreByID{1: 3, 2: 5, 3: 4}, panicOnReviewer(2), 0.5, log)

	results, err := newMatcher(scorer, log).FindTopProviders(context.Background(), req, providers)
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 2}, providerIDs(results))
	// Provider 2 keeps its base score; the others blend in the review.
	require.Equal(t, 7.0, results[0].MatchScore)
	require.Equal(t, 6.5, results[1].MatchScore)
	require.Equal(t, 5.0, results[2].MatchScore)
	require.Equal(t, 1, observed.FilterMessage("error calculating provider score").Len())
	require.Zero(t, observed.FilterMessage("matching failed").Len())
}
