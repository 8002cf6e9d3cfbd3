package services

import (
	"context"

	"studioapi/models"

	"gorm.io/gorm"
)

type sessionIDKey struct{}

// WithSessionID tags ctx so usage records can be attributed to a session.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

type UsageRecorder interface {
	Record(ctx context.Context, record *models.GenerationRecord) error
}

type NoopUsageRecorder struct{}

func (NoopUsageRecorder) Record(ctx context.Context, record *models.GenerationRecord) error {
	return nil
}

// GormUsageRecorder writes one row per image service call.
type GormUsageRecorder struct {
	DB *gorm.DB
}

func (r GormUsageRecorder) Record(ctx context.Context, record *models.GenerationRecord) error {
	return r.DB.WithContext(ctx).Create(record).Error
}

func newGenerationRecord(ctx context.Context, operation string, model string) *models.GenerationRecord {
	return &models.GenerationRecord{
		Operation: operation,
		SessionID: SessionIDFrom(ctx),
		LLMModel:  model,
	}
}
