package catalog

import (
	"fmt"
	"strings"
	"time"
)

// CostProfile is the requestor's sensitivity to cost. The zero value means
// the profile was never set and matches no size bucket.
type CostProfile int

const (
	CostProfileUnset CostProfile = iota
	CostProfileLow
	CostProfileMedium
	CostProfileHigh
)

// Valid reports whether c is one of Low, Medium or High.
func (c CostProfile) Valid() bool {
	return c >= CostProfileLow && c <= CostProfileHigh
}

func (c CostProfile) String() string {
	switch c {
	case CostProfileUnset:
		return "unset"
	case CostProfileLow:
		return "low"
	case CostProfileMedium:
		return "medium"
	case CostProfileHigh:
		return "high"
	default:
		return fmt.Sprintf("CostProfile(%d)", int(c))
	}
}

// ParseCostProfile accepts low, medium or high in any case.
func ParseCostProfile(s string) (CostProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return CostProfileLow, nil
	case "medium":
		return CostProfileMedium, nil
	case "high":
		return CostProfileHigh, nil
	default:
		return CostProfileUnset, fmt.Errorf("unknown cost profile %q", s)
	}
}

// SizeBucket groups providers by employee count.
type SizeBucket int

const (
	SizeVerySmall SizeBucket = iota
	SizeSmall
	SizeSME
	SizeBig
)

func (b SizeBucket) String() string {
	switch b {
	case SizeVerySmall:
		return "very_small"
	case SizeSmall:
		return "small"
	case SizeSME:
		return "sme"
	case SizeBig:
		return "big"
	default:
		return fmt.Sprintf("SizeBucket(%d)", int(b))
	}
}

// BucketForEmployees maps an employee count onto its size bucket.
func BucketForEmployees(employees int) SizeBucket {
	switch {
	case employees < 10:
		return SizeVerySmall
	case employees < 50:
		return SizeSmall
	case employees < 250:
		return SizeSME
	default:
		return SizeBig
	}
}

type Service struct {
	ID            int    `json:"id" mapstructure:"id"`
	Name          string `json:"name,omitempty" mapstructure:"name"`
	Domain        string `json:"domain,omitempty" mapstructure:"domain"`
	Subdomain     string `json:"subdomain,omitempty" mapstructure:"subdomain"`
	MaturityStage int    `json:"maturity_stage" mapstructure:"maturity_stage"`
}

type Requestor struct {
	ID                   int         `json:"id" mapstructure:"id"`
	CompanyName          string      `json:"company_name,omitempty" mapstructure:"company_name"`
	Revenue              float64     `json:"revenue,omitempty" mapstructure:"revenue"`
	EmployeeCount        int         `json:"employee_count,omitempty" mapstructure:"employee_count"`
	CostProfile          CostProfile `json:"cost_profile" mapstructure:"cost_profile"`
	DigitalMaturityIndex int         `json:"digital_maturity_index" mapstructure:"digital_maturity_index"`
	Location             string      `json:"location,omitempty" mapstructure:"location"`
}

type Request struct {
	ID                        int        `json:"id" mapstructure:"id"`
	ServiceID                 int        `json:"service_id" mapstructure:"service_id"`
	NumberOfUsers             int        `json:"number_of_users" mapstructure:"number_of_users"`
	LocationProximityRequired bool       `json:"location_proximity_required" mapstructure:"location_proximity_required"`
	RequestorID               int        `json:"requestor_id" mapstructure:"requestor_id"`
	Requestor                 *Requestor `json:"-" mapstructure:"-"`
}

// ProviderSkill links a provider to a service it offers.
type ProviderSkill struct {
	ServiceID         int      `json:"service_id" mapstructure:"service_id"`
	MaxUsersSupported *int     `json:"max_users_supported,omitempty" mapstructure:"max_users_supported"`
	YearsOfExperience int      `json:"years_of_experience,omitempty" mapstructure:"years_of_experience"`
	Service           *Service `json:"-" mapstructure:"-"`
}

type Certification struct {
	Name      string     `json:"name" mapstructure:"name"`
	IssuedAt  *time.Time `json:"issued_at,omitempty" mapstructure:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" mapstructure:"expires_at"`
}

type Provider struct {
	ID                  int             `json:"id" mapstructure:"id"`
	CompanyName         string          `json:"company_name,omitempty" mapstructure:"company_name"`
	EmployeeCount       int             `json:"employee_count" mapstructure:"employee_count"`
	Location            string          `json:"location,omitempty" mapstructure:"location"`
	AssessmentScore     float64         `json:"assessment_score" mapstructure:"assessment_score"`
	LastActivityDate    *time.Time      `json:"last_activity_date,omitempty" mapstructure:"last_activity_date"`
	ProjectCount        int             `json:"project_count" mapstructure:"project_count"`
	AverageProjectValue float64         `json:"average_project_value" mapstructure:"average_project_value"`
	Skills              []ProviderSkill `json:"skills,omitempty" mapstructure:"skills"`
	// Certifications is nil when unknown and empty when the provider holds none.
	Certifications []Certification `json:"certifications,omitempty" mapstructure:"certifications"`
}

// SkillFor returns the first skill offering the service, or nil.
func (p *Provider) SkillFor(serviceID int) *ProviderSkill {
	if p == nil {
		return nil
	}
	for i := range p.Skills {
		if p.Skills[i].ServiceID == serviceID {
			return &p.Skills[i]
		}
	}
	return nil
}

// SizeBucket returns the provider's size bucket.
func (p *Provider) SizeBucket() SizeBucket {
	return BucketForEmployees(p.EmployeeCount)
}

// MatchingResult is a single ranked entry returned by the matcher.
type MatchingResult struct {
	RequestID  int       `json:"request_id"`
	Provider   *Provider `json:"provider"`
	MatchScore float64   `json:"match_score"`
	Rank       int       `json:"rank"`
}
