package services

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"studioapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func imageResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "here you go"},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
			}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestAssetFromResponseReturnsFirstImage(t *testing.T) {
	data := pngBytes(t, 3, 3, color.Black)
	asset, err := AssetFromResponse(OpStyleFilter, imageResponse(data))
	require.NoError(t, err)
	assert.Equal(t, "image/png", asset.MIMEType)
	assert.Equal(t, data, asset.Data)
}

func TestAssetFromResponsePromptBlocked(t *testing.T) {
	result := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
			BlockReason:        genai.BlockedReasonSafety,
			BlockReasonMessage: "unsafe prompt",
		},
	}
	_, err := AssetFromResponse(OpLocalizedEdit, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentBlocked)
	assert.Contains(t, UserMessage(err), "Request was blocked")
	assert.Contains(t, UserMessage(err), "unsafe prompt")
}

func TestAssetFromResponseSafetyRating(t *testing.T) {
	result := imageResponse(pngBytes(t, 2, 2, color.White))
	result.Candidates[0].SafetyRatings = []*genai.SafetyRating{{Blocked: true, Category: genai.HarmCategoryHarassment}}
	_, err := AssetFromResponse(OpAdjust, result)
	assert.ErrorIs(t, err, ErrContentBlocked)
}

func TestAssetFromResponseTextOnly(t *testing.T) {
	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: "I cannot edit this image"}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
	_, err := AssetFromResponse(OpStyleFilter, result)
	assert.ErrorIs(t, err, ErrNoImage)
	assert.Contains(t, UserMessage(err), "I cannot edit this image")
}

func TestAssetFromResponseUnexpectedStop(t *testing.T) {
	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{},
			FinishReason: genai.FinishReason("IMAGE_SAFETY"),
		}},
	}
	_, err := AssetFromResponse(OpGenerateModel, result)
	assert.ErrorIs(t, err, ErrNoImage)
	assert.Contains(t, UserMessage(err), "IMAGE_SAFETY")
}

func TestTranslateCallErrorQuota(t *testing.T) {
	err := translateCallError(OpCompositeGarment, errors.New("Error 429, Message: quota, Status: RESOURCE_EXHAUSTED"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Contains(t, err.Reason, "quota")
}

func TestUserMessagePlainError(t *testing.T) {
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}

type recorderSpy struct {
	records []*models.GenerationRecord
}

func (r *recorderSpy) Record(ctx context.Context, record *models.GenerationRecord) error {
	r.records = append(r.records, record)
	return nil
}

func TestFinishRecordsUsage(t *testing.T) {
	spy := &recorderSpy{}
	svc := &GoogleImageService{model: Flash25Image.String(), recorder: spy}
	ctx := WithSessionID(context.Background(), "session-1")
	result := imageResponse(pngBytes(t, 2, 2, color.White))
	result.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 20, TotalTokenCount: 30}

	record := newGenerationRecord(ctx, OpRegeneratePose, svc.model)
	svc.finish(ctx, record, time.Now(), result, nil)

	require.Len(t, spy.records, 1)
	got := spy.records[0]
	assert.Equal(t, "session-1", got.SessionID)
	assert.Equal(t, OpRegeneratePose, got.Operation)
	assert.Equal(t, models.GenerationStatusSucceeded, got.Status)
	assert.Equal(t, int32(30), *got.LLMTotalTokenCount)

	svc.finish(ctx, newGenerationRecord(ctx, OpRegeneratePose, svc.model), time.Now(), nil, errors.New("failed"))
	assert.Equal(t, models.GenerationStatusFailed, spy.records[1].Status)
	assert.Equal(t, "failed", *spy.records[1].ErrorMessage)
}
