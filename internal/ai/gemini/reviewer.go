package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/ai"
	"github.com/spigell/provider-matcher/internal/catalog"
	"github.com/spigell/provider-matcher/internal/logger"
	"github.com/spigell/provider-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var systemPrompt string

const defaultMaxLogLength = 200

// Reviewer asks Gemini to rate providers.
type Reviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewReviewer(generator contentGenerator, maxLogLength int, log *zap.Logger) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Reviewer{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

type providerProfile struct {
	ID                  int      `json:"id"`
	CompanyName         string   `json:"company_name,omitempty"`
	EmployeeCount       int      `json:"employee_count"`
	Location            string   `json:"location,omitempty"`
	AssessmentScore     float64  `json:"assessment_score"`
	LastActivityDate    string   `json:"last_activity_date,omitempty"`
	ProjectCount        int      `json:"project_count"`
	AverageProjectValue float64  `json:"average_project_value"`
	Certifications      []string `json:"certifications"`
}

func (r *Reviewer) Review(ctx context.Context, provider *catalog.Provider, certifications []catalog.Certification) (*ai.Assessment, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}

	message, err := buildMessage(provider, certifications)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini review request",
		zap.Int(logger.FieldProviderID, provider.ID),
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, systemPrompt, message)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini review response",
		zap.Int(logger.FieldProviderID, provider.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildMessage(provider *catalog.Provider, certifications []catalog.Certification) (string, error) {
	profile := providerProfile{
		ID:                  provider.ID,
		CompanyName:         provider.CompanyName,
		EmployeeCount:       provider.EmployeeCount,
		Location:            provider.Location,
		AssessmentScore:     provider.AssessmentScore,
		ProjectCount:        provider.ProjectCount,
		AverageProjectValue: provider.AverageProjectValue,
		Certifications:      []string{},
	}
	if provider.LastActivityDate != nil {
		profile.LastActivityDate = provider.LastActivityDate.Format("2006-01-02")
	}
	for _, c := range certifications {
		if name := strings.TrimSpace(c.Name); name != "" {
			profile.Certifications = append(profile.Certifications, name)
		}
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal provider profile: %w", err)
	}
	return string(data), nil
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, errors.New("gemini response has no usable score")
	}

	return &ai.Assessment{
		Score:  math.Max(0, math.Min(10, score)),
		Reason: coerceString(data["reason"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
