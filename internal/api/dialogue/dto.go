package dialogue

import (
	"time"

	"SupportDesk/internal/entity"
	"SupportDesk/pkg/similarity"
)

// Turn outcome actions surfaced to the frontend.
const (
	ActionGreeting  = "greeting"
	ActionPrompt    = "prompt"
	ActionSubmitted = "submitted"
	ActionEscalated = "escalated"
)

type TurnRequest struct {
	ConversationID  string `json:"conversation_id"`
	Message         string `json:"message" validate:"required"`
	ProductCategory string `json:"product_category"`
	Hour            *int   `json:"hour" validate:"omitempty,min=0,max=23"`
}

type TurnResponse struct {
	ConversationID string  `json:"conversation_id"`
	Reply          string  `json:"reply"`
	Action         string  `json:"action"`
	Intent         string  `json:"intent,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	MissingSlot    string  `json:"missing_slot,omitempty"`
}

type HistoryResponse struct {
	ConversationID string             `json:"conversation_id"`
	Entries        []entity.ChatEntry `json:"entries"`
}

type MappingRequest struct {
	Intent   string   `json:"intent" validate:"required"`
	Phrases  []string `json:"phrases" validate:"required,min=1,dive,required"`
	Priority int      `json:"priority"`
	IsActive *bool    `json:"is_active"`
}

type MappingResponse struct {
	ID        string   `json:"id"`
	Intent    string   `json:"intent"`
	Phrases   []string `json:"phrases"`
	Priority  int      `json:"priority"`
	IsActive  bool     `json:"is_active"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type SubmissionResponse struct {
	ID          string            `json:"id"`
	Intent      string            `json:"intent"`
	Slots       map[string]string `json:"slots"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

type ExportRequest struct {
	BaseIntent string `json:"base_intent" validate:"required"`
}

type ExportResponse struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
	Count     int    `json:"count"`
}

type SimilarResponse struct {
	Query     string                `json:"query"`
	Neighbors []similarity.Neighbor `json:"neighbors"`
}
