package dialogueService

import (
	"SupportDesk/internal/api/dialogue"
	"SupportDesk/internal/entity"
	contextPkg "SupportDesk/pkg/context"
	redisPkg "SupportDesk/pkg/redis"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	greetingReply   = "Hi there! How can I assist you today?"
	escalationReply = "Sorry, I couldn't understand. Escalating to human support."
)

func (s *dialogueService) HandleTurn(ctx context.Context, req dialogue.TurnRequest) (*dialogue.TurnResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if strings.TrimSpace(req.Message) == "" {
		return nil, dialogue.ErrEmptyMessage
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		newID, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to mint conversation id")
			return nil, err
		}
		conversationID = newID
	}

	lock := s.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetSession(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, redisPkg.ErrSessionNotFound) {
			return nil, err
		}
		now := time.Now()
		session = entity.DialogueSession{
			ID:        conversationID,
			Slots:     make(map[string]string),
			CreatedAt: now,
		}
	}
	session.LastActivity = time.Now()

	s.appendEntry(&session, entity.RoleUser, req.Message)
	s.persistMessage(ctx, conversationID, entity.RoleUser, req.Message)

	mappings := s.loadMappings(ctx)

	// Greeting short-circuits every turn, even mid-collection, but never
	// touches the open ticket: saying "hi" while answering a prompt must not
	// abort the in-progress collection.
	if s.isGreeting(req.Message, mappings) {
		return s.reply(ctx, &session, dialogue.TurnResponse{
			ConversationID: conversationID,
			Reply:          greetingReply,
			Action:         dialogue.ActionGreeting,
		})
	}

	var confidence float64
	if session.Status != entity.SessionStatusCollecting {
		category := req.ProductCategory
		if category == "" {
			category = s.config.DefaultCategory
		}
		hour := s.config.DefaultHour
		if req.Hour != nil {
			hour = *req.Hour
		}

		res, err := s.resolveIntent(ctx, req.Message, category, hour, mappings)
		if err != nil {
			return nil, err
		}
		confidence = res.Confidence

		if res.Escalated {
			if s.mailer != nil {
				if notifyErr := s.mailer.SendEscalationNotice(conversationID, req.Message); notifyErr != nil {
					s.log.WithFields(logrus.Fields{
						"request_id": requestID,
						"error":      notifyErr.Error(),
					}).Warn("Failed to send escalation notice")
				}
			}

			return s.reply(ctx, &session, dialogue.TurnResponse{
				ConversationID: conversationID,
				Reply:          escalationReply,
				Action:         dialogue.ActionEscalated,
				Confidence:     res.Confidence,
			})
		}

		session.Intent = res.Intent
		session.Slots = make(map[string]string)
		session.Status = entity.SessionStatusCollecting

		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"conversation_id": conversationID,
			"intent":          res.Intent.String(),
			"confidence":      res.Confidence,
			"fallback":        res.Fallback,
		}).Info("Intent resolved, collecting slots")
	}

	for slot, value := range extractSlots(session.Intent, req.Message) {
		session.Slots[slot] = value
	}

	required := requiredSlots(session.Intent)
	if len(required) == 0 {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"intent":     session.Intent.String(),
		}).Warn("No slot schema for resolved intent, finalizing with empty slots")
	}

	var missing []string
	for _, slot := range required {
		if _, ok := session.Slots[slot]; !ok {
			missing = append(missing, slot)
		}
	}

	if len(missing) > 0 {
		return s.reply(ctx, &session, dialogue.TurnResponse{
			ConversationID: conversationID,
			Reply:          fmt.Sprintf("Please provide: %s", missing[0]),
			Action:         dialogue.ActionPrompt,
			Intent:         session.Intent.String(),
			Confidence:     confidence,
			MissingSlot:    missing[0],
		})
	}

	return s.finalize(ctx, &session, confidence)
}

// finalize emits the submission record and resets the session. A sink failure
// keeps the session collecting with its slots intact so the user can retry by
// resending the last message.
func (s *dialogueService) finalize(ctx context.Context, session *entity.DialogueSession, confidence float64) (*dialogue.TurnResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	recordID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to mint submission id")
		return nil, err
	}

	slots := make(map[string]string, len(session.Slots))
	for k, v := range session.Slots {
		slots[k] = v
	}

	record := entity.SubmissionRecord{
		ID:          recordID,
		Intent:      session.Intent,
		Slots:       slots,
		SubmittedAt: time.Now(),
	}

	if err := s.sink.AppendSubmission(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"conversation_id": session.ID,
			"intent":          record.Intent.String(),
			"error":           err.Error(),
		}).Error("Submission sink rejected record")

		if saveErr := s.sessions.SaveSession(ctx, *session); saveErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      saveErr.Error(),
			}).Error("Failed to save session after sink failure")
		}

		return nil, dialogue.ErrSubmissionFailed
	}

	reply := fmt.Sprintf("Your request for '%s' has been submitted with info: %s",
		record.Intent.String(), formatSlots(record.Intent, record.Slots))

	intentLabel := record.Intent.String()
	session.Reset()

	return s.reply(ctx, session, dialogue.TurnResponse{
		ConversationID: session.ID,
		Reply:          reply,
		Action:         dialogue.ActionSubmitted,
		Intent:         intentLabel,
		Confidence:     confidence,
	})
}

// reply appends the bot entry, persists both the transcript row and the
// session, then hands the response back.
func (s *dialogueService) reply(ctx context.Context, session *entity.DialogueSession, res dialogue.TurnResponse) (*dialogue.TurnResponse, error) {
	s.appendEntry(session, entity.RoleBot, res.Reply)
	s.persistMessage(ctx, session.ID, entity.RoleBot, res.Reply)

	if err := s.sessions.SaveSession(ctx, *session); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":      contextPkg.GetRequestID(ctx),
			"conversation_id": session.ID,
			"error":           err.Error(),
		}).Error("Failed to save dialogue session")
		return nil, err
	}

	return &res, nil
}

func (s *dialogueService) appendEntry(session *entity.DialogueSession, role string, message string) {
	session.History = append(session.History, entity.ChatEntry{
		Role:    role,
		Message: message,
		At:      time.Now(),
	})

	if limit := s.config.HistoryLimit; limit > 0 && len(session.History) > limit {
		session.History = session.History[len(session.History)-limit:]
	}
}

// persistMessage writes the transcript row; failures are logged and tolerated
// because the session history still holds the recent entries.
func (s *dialogueService) persistMessage(ctx context.Context, conversationID string, role string, message string) {
	repo, err := s.dialogueRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to open repository client for transcript row")
		return
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return
	}

	row := entity.ConversationMessage{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Message:        message,
		CreatedAt:      time.Now(),
	}

	if err := repo.Messages.CreateMessage(ctx, row); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":      contextPkg.GetRequestID(ctx),
			"conversation_id": conversationID,
			"error":           err.Error(),
		}).Warn("Failed to persist transcript row")
	}
}

// formatSlots renders slot values in schema order so confirmations and tests
// stay deterministic.
func formatSlots(intent entity.Intent, slots map[string]string) string {
	parts := make([]string, 0, len(slots))
	for _, slot := range requiredSlots(intent) {
		if value, ok := slots[slot]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", slot, value))
		}
	}
	return strings.Join(parts, ", ")
}
