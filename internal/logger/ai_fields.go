package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// CommonFields returns standard zap fields describing the AI provider and
// model. Empty values are omitted to keep log entries compact.
func CommonFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if v := strings.TrimSpace(provider); v != "" {
		fields = append(fields, zap.String(FieldProvider, v))
	}
	if v := strings.TrimSpace(model); v != "" {
		fields = append(fields, zap.String(FieldModel, v))
	}
	return fields
}

// WithCommonFields attaches the common AI fields to the provided logger,
// defaulting to a no-op logger when nil.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := CommonFields(provider, model)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
