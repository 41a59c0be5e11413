package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/provider-matcher/internal/catalog"
)

const (
	FieldProviderID = "provider_id"
	FieldRequestID  = "request_id"
	FieldServiceID  = "service_id"
	FieldRunID      = "run_id"

	// FieldAIProvider is the structured log field key for the AI provider name.
	FieldAIProvider = "ai_provider"
	// FieldAIModel is the structured log field key for the AI model identifier.
	FieldAIModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger, defaulting to
// a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ProviderFields identifies a provider in log entries.
func ProviderFields(p *catalog.Provider) []zap.Field {
	if p == nil {
		return []zap.Field{zap.Bool("provider_nil", true)}
	}
	return []zap.Field{zap.Int(FieldProviderID, p.ID)}
}

// RequestFields describes the request being matched.
func RequestFields(req *catalog.Request) []zap.Field {
	if req == nil {
		return []zap.Field{zap.Bool("request_nil", true)}
	}

	fields := []zap.Field{
		zap.Int(FieldRequestID, req.ID),
		zap.Int(FieldServiceID, req.ServiceID),
		zap.Int("number_of_users", req.NumberOfUsers),
		zap.Bool("location_proximity_required", req.LocationProximityRequired),
	}
	if req.Requestor != nil {
		fields = append(fields,
			zap.Stringer("cost_profile", req.Requestor.CostProfile),
			zap.Int("digital_maturity_index", req.Requestor.DigitalMaturityIndex),
		)
	}
	return fields
}

// AIFields returns fields describing the AI provider and model. Empty values
// are dropped.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldAIProvider, Value: provider},
		StringField{Key: FieldAIModel, Value: model},
	)
}

// WithAIFields attaches AIFields to the logger.
func WithAIFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}
