package entity

import (
	"strings"
	"time"
)

// IntentSeparator renders hierarchical intents at the wire and persistence
// edges; internally the base and sub labels stay separate fields.
const IntentSeparator = " → "

type Intent struct {
	Base string `json:"base"`
	Sub  string `json:"sub,omitempty"`
}

func (i Intent) IsZero() bool {
	return i.Base == ""
}

func (i Intent) String() string {
	if i.Sub == "" {
		return i.Base
	}
	return i.Base + IntentSeparator + i.Sub
}

func ParseIntent(s string) Intent {
	base, sub, found := strings.Cut(s, IntentSeparator)
	if !found {
		return Intent{Base: strings.TrimSpace(s)}
	}
	return Intent{Base: strings.TrimSpace(base), Sub: strings.TrimSpace(sub)}
}

type SessionStatus string

const (
	SessionStatusEmpty      SessionStatus = ""
	SessionStatusCollecting SessionStatus = "collecting"
)

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

type ChatEntry struct {
	Role    string    `json:"role"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// DialogueSession models exactly one open ticket at a time: empty until an
// intent resolves, collecting while required slots are missing, and reset to
// empty the moment the submission record is handed off.
type DialogueSession struct {
	ID           string            `json:"id"`
	Intent       Intent            `json:"intent"`
	Slots        map[string]string `json:"slots"`
	Status       SessionStatus     `json:"status"`
	History      []ChatEntry       `json:"history"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
}

func (s *DialogueSession) Reset() {
	s.Intent = Intent{}
	s.Slots = make(map[string]string)
	s.Status = SessionStatusEmpty
}

// ConversationMessage is the persisted transcript row; the in-session
// History keeps only the most recent entries, the table keeps everything.
type ConversationMessage struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	Role           string    `json:"role" db:"role"`
	Message        string    `json:"message" db:"message"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type SubmissionRecord struct {
	ID          string            `json:"id"`
	Intent      Intent            `json:"intent"`
	Slots       map[string]string `json:"slots"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// IntentMapping is one row of the keyword fallback table. Rows are evaluated
// in (priority, created_at) order so first-match-wins stays deterministic.
type IntentMapping struct {
	ID        string    `json:"id"`
	Intent    string    `json:"intent"`
	Phrases   []string  `json:"phrases"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
