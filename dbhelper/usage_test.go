package dbhelper

import (
	"context"
	"testing"

	"studioapi/models"
	"studioapi/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUsageRecorder(t *testing.T) {
	db := SetupTestDB()
	if db == nil {
		t.Skip("postgres is not reachable")
	}
	cleaner := SetupCleaner(db)
	defer cleaner()

	recorder := services.GormUsageRecorder{DB: db}
	ctx := services.WithSessionID(context.Background(), "session-1")
	duration := 1.5
	err := recorder.Record(ctx, &models.GenerationRecord{
		Operation: services.OpStyleFilter,
		SessionID: services.SessionIDFrom(ctx),
		Status:    models.GenerationStatusSucceeded,
		Duration:  &duration,
		LLMModel:  services.Flash25Image.String(),
	})
	require.NoError(t, err)

	var stored []models.GenerationRecord
	require.NoError(t, db.Where("session_id = ?", "session-1").Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, services.OpStyleFilter, stored[0].Operation)
	assert.Equal(t, models.GenerationStatusSucceeded, stored[0].Status)
}
