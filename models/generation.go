package models

import "time"

const (
	GenerationStatusSucceeded = "completed"
	GenerationStatusFailed    = "failed"
)

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerationRecord is one call to the image service, kept for usage accounting.
// It never holds image content or session state.
type GenerationRecord struct {
	JsonModel
	Operation string `gorm:"index" json:"operation"`
	SessionID string `gorm:"index" json:"session_id"`
	// completed, failed
	Status                string   `json:"status"`
	Duration              *float64 `json:"duration"` // in seconds
	LLMModel              string   `json:"llm_model"`
	LLMInputTokenCount    *int32   `json:"llm_input_token_usage"`
	LLMOutputTokenCount   *int32   `json:"llm_output_token_usage"`
	LLMTotalTokenCount    *int32   `json:"llm_total_token_usage"`
	LLMThoughtsTokenCount *int32   `json:"llm_thoughts_token_count"`
	ErrorMessage          *string  `gorm:"type:text" json:"error_message"`
}
