package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"studioapi/models"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

// LLMModelName is the Gemini model used for a generation.
type LLMModelName int32

const (
	Flash25Image LLMModelName = iota
	Flash25
	Pro25
)

func (t LLMModelName) String() string {
	switch t {
	case Flash25Image:
		return "gemini-2.5-flash-image-preview"
	case Flash25:
		return "gemini-2.5-flash"
	case Pro25:
		return "gemini-2.5-pro"
	default:
		return "gemini-2.5-flash-image-preview"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

func Int32Pointer(i int32) *int32 {
	return &i
}

type GoogleImageService struct {
	client   *genai.Client
	model    string
	recorder UsageRecorder
}

func NewGoogleImageService(ctx context.Context, apiKey string, model string, recorder UsageRecorder) (*GoogleImageService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = Flash25Image.String()
	}
	if recorder == nil {
		recorder = NoopUsageRecorder{}
	}
	return &GoogleImageService{client: client, model: model, recorder: recorder}, nil
}

func (s *GoogleImageService) LocalizedEdit(ctx context.Context, src *models.ImageAsset, instruction string, point models.Point) (*models.ImageAsset, error) {
	prompt := fmt.Sprintf(`You are an expert photo editor AI. Perform a natural, localized edit on the provided image based on the user's request.
User Request: "%s"
Edit Location: Focus on the area around pixel coordinates (x: %d, y: %d).

Editing Guidelines:
- The edit must be realistic and blend seamlessly with the surrounding area.
- The rest of the image outside the immediate edit area must remain identical to the original.

Safety & Ethics Policy:
- You MUST fulfill requests to adjust skin tone, such as 'give me a tan' or 'make my skin darker'.
- You MUST REFUSE any request to change a person's fundamental race or ethnicity.

Output: Return ONLY the final edited image. Do not return text.`, instruction, int(point.X), int(point.Y))
	return s.generate(ctx, OpLocalizedEdit, prompt, src)
}

func (s *GoogleImageService) StyleFilter(ctx context.Context, src *models.ImageAsset, instruction string) (*models.ImageAsset, error) {
	prompt := fmt.Sprintf(`You are an expert photo editor AI. Apply a stylistic filter to the entire image based on the user's request. Do not change the composition or content, only apply the style.
Filter Request: "%s"

Safety & Ethics Policy:
- Filters may subtly shift colors, but you MUST ensure they do not alter a person's fundamental race or ethnicity.

Output: Return ONLY the final filtered image. Do not return text.`, instruction)
	return s.generate(ctx, OpStyleFilter, prompt, src)
}

func (s *GoogleImageService) Adjust(ctx context.Context, src *models.ImageAsset, instruction string) (*models.ImageAsset, error) {
	prompt := fmt.Sprintf(`You are an expert photo editor AI. Perform a natural, global adjustment to the entire image based on the user's request.
User Request: "%s"

Editing Guidelines:
- The adjustment must be applied across the entire image.
- The result must be photorealistic.

Output: Return ONLY the final adjusted image. Do not return text.`, instruction)
	return s.generate(ctx, OpAdjust, prompt, src)
}

func (s *GoogleImageService) RemoveBackground(ctx context.Context, src *models.ImageAsset) (*models.ImageAsset, error) {
	prompt := `You are an expert photo editor AI. Remove the background of the image and keep only the main subject, with clean and precise edges. The new background must be fully transparent.

Output: Return ONLY the final image with a transparent background. Do not return text.`
	return s.generate(ctx, OpRemoveBackground, prompt, src)
}

func (s *GoogleImageService) GenerateModel(ctx context.Context, portrait *models.ImageAsset) (*models.ImageAsset, error) {
	prompt := `You are an expert fashion photographer AI. Transform the person in this image into a full-body fashion model photo suitable for an e-commerce website. The background must be a clean, neutral studio backdrop (light gray, #f0f0f0). The person should have a neutral, professional model expression. Preserve the person's identity, unique features, and body type, but place them in a standard, relaxed standing model pose. The final image must be photorealistic. Return ONLY the final image.`
	return s.generate(ctx, OpGenerateModel, prompt, portrait)
}

func (s *GoogleImageService) CompositeGarment(ctx context.Context, model *models.ImageAsset, garment *models.ImageAsset) (*models.ImageAsset, error) {
	prompt := `You are an expert virtual try-on AI. You will be given a 'model image' and a 'garment image'. Your task is to create a new photorealistic image where the person from the 'model image' is wearing the clothing from the 'garment image'.

Crucial Rules:
1. Complete Garment Replacement: You MUST completely REMOVE and REPLACE the clothing item worn by the person in the 'model image' with the new garment. No part of the original clothing that would be covered by the new garment should be visible.
2. Preserve the Model: The person's face, hair, body shape, and pose from the 'model image' MUST remain unchanged.
3. Preserve the Background: The entire background from the 'model image' MUST be preserved perfectly.
4. Apply the Garment: Realistically fit the new garment onto the person. It should adapt to their pose with natural folds, shadows, and lighting consistent with the original scene.
5. Output: Return ONLY the final, edited image. Do not include any text.`
	return s.generate(ctx, OpCompositeGarment, prompt, model, garment)
}

func (s *GoogleImageService) RegeneratePose(ctx context.Context, model *models.ImageAsset, pose string) (*models.ImageAsset, error) {
	prompt := fmt.Sprintf(`You are an expert fashion photographer AI. Take this image and regenerate it from a different perspective. The person, clothing, and background style must remain identical. The new perspective should be: "%s". Return ONLY the final image.`, pose)
	return s.generate(ctx, OpRegeneratePose, prompt, model)
}

func (s *GoogleImageService) generate(ctx context.Context, operation string, prompt string, images ...*models.ImageAsset) (*models.ImageAsset, error) {
	var parts []*genai.Part
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MIMEType,
				Data:     img.Data,
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	started := time.Now()
	record := newGenerationRecord(ctx, operation, s.model)
	result, err := s.client.Models.GenerateContent(ctx, s.model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		Temperature:        floatPointer(1),
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", operation, err)
		serviceErr := translateCallError(operation, err)
		s.finish(ctx, record, started, nil, serviceErr)
		return nil, serviceErr
	}

	asset, err := AssetFromResponse(operation, result)
	s.finish(ctx, record, started, result, err)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *GoogleImageService) finish(ctx context.Context, record *models.GenerationRecord, started time.Time, result *genai.GenerateContentResponse, err error) {
	duration := time.Since(started).Seconds()
	record.Duration = &duration
	record.Status = models.GenerationStatusSucceeded
	if err != nil {
		record.Status = models.GenerationStatusFailed
		record.ErrorMessage = StrPointer(err.Error())
	}
	if result != nil && result.UsageMetadata != nil {
		record.LLMInputTokenCount = Int32Pointer(result.UsageMetadata.PromptTokenCount)
		record.LLMOutputTokenCount = Int32Pointer(result.UsageMetadata.CandidatesTokenCount)
		record.LLMTotalTokenCount = Int32Pointer(result.UsageMetadata.TotalTokenCount)
		record.LLMThoughtsTokenCount = Int32Pointer(result.UsageMetadata.ThoughtsTokenCount)
		fmt.Println("Input token count:", result.UsageMetadata.PromptTokenCount)
		fmt.Println("Total token count:", result.UsageMetadata.TotalTokenCount)
	}
	if recordErr := s.recorder.Record(ctx, record); recordErr != nil {
		log.Printf("[Session: %s] failed to record %s usage: %v", record.SessionID, record.Operation, recordErr)
		sentry.CaptureException(recordErr)
	}
}

func translateCallError(operation string, err error) *ImageServiceError {
	message := err.Error()
	if strings.Contains(message, "RESOURCE_EXHAUSTED") || strings.Contains(message, "Error 429") {
		return &ImageServiceError{
			Operation: operation,
			Reason:    "The image service quota has been exceeded. Please try again later.",
			Err:       ErrQuotaExceeded,
		}
	}
	return &ImageServiceError{
		Operation: operation,
		Reason:    fmt.Sprintf("The image service could not complete the %s request: %s", operation, message),
		Err:       err,
	}
}

// AssetFromResponse extracts the first inline image of a response, turning
// blocks, text-only replies and early stops into descriptive errors.
func AssetFromResponse(operation string, result *genai.GenerateContentResponse) (*models.ImageAsset, error) {
	if result == nil {
		return nil, &ImageServiceError{Operation: operation, Reason: "The image service returned an empty response.", Err: ErrNoImage}
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		reason := fmt.Sprintf("Request was blocked. Reason: %s.", result.PromptFeedback.BlockReason)
		if result.PromptFeedback.BlockReasonMessage != "" {
			reason = fmt.Sprintf("%s %s", reason, result.PromptFeedback.BlockReasonMessage)
		}
		return nil, &ImageServiceError{Operation: operation, Reason: reason, Err: ErrContentBlocked}
	}

	images, err := GetAllInlineImages(result)
	if err != nil {
		return nil, &ImageServiceError{Operation: operation, Reason: err.Error(), Err: ErrContentBlocked}
	}
	if len(images) > 0 {
		asset, err := models.NewImageAssetWithType(fmt.Sprintf("%s-%d", operation, time.Now().UnixNano()), images[0].MIMEType, images[0].Data)
		if err != nil {
			return nil, &ImageServiceError{Operation: operation, Reason: "The image service returned an unreadable image.", Err: err}
		}
		return asset, nil
	}

	if len(result.Candidates) > 0 {
		finishReason := result.Candidates[0].FinishReason
		if finishReason != "" && finishReason != genai.FinishReasonStop {
			return nil, &ImageServiceError{
				Operation: operation,
				Reason:    fmt.Sprintf("Image generation for %s stopped unexpectedly. Reason: %s. This often relates to safety settings.", operation, finishReason),
				Err:       ErrNoImage,
			}
		}
	}
	text := strings.TrimSpace(result.Text())
	reason := fmt.Sprintf("The AI model did not return an image for the %s. This can happen due to safety filters or if the request is too complex. Please try rephrasing your prompt.", operation)
	if text != "" {
		reason = fmt.Sprintf("The AI model did not return an image for the %s. The model responded with text: %q", operation, text)
	}
	return nil, &ImageServiceError{Operation: operation, Reason: reason, Err: ErrNoImage}
}

func GetAllInlineImages(result *genai.GenerateContentResponse) ([]*genai.Blob, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot read images of an empty response")
	}

	var images []*genai.Blob
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
		if cand.Content == nil || len(cand.Content.Parts) == 0 {
			continue
		}
		for _, part := range cand.Content.Parts {
			inlineData := part.InlineData
			if inlineData != nil && strings.HasPrefix(inlineData.MIMEType, "image/") && len(inlineData.Data) > 0 {
				images = append(images, inlineData)
			}
		}
	}
	return images, nil
}
