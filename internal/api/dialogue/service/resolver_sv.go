package dialogueService

import (
	"SupportDesk/internal/api/dialogue"
	"SupportDesk/internal/entity"
	contextPkg "SupportDesk/pkg/context"
	"SupportDesk/pkg/textnorm"
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

type resolution struct {
	Intent     entity.Intent
	Confidence float64
	Escalated  bool
	Fallback   bool
}

// resolveIntent runs the two-stage classifier over the utterance and its
// ticket metadata, then falls back to the keyword table when the primary
// model is not confident enough. Both signals failing means escalation.
func (s *dialogueService) resolveIntent(ctx context.Context, text string, category string, hour int, mappings []entity.IntentMapping) (resolution, error) {
	requestID := contextPkg.GetRequestID(ctx)

	normalized := textnorm.Normalize(text)
	textVec := s.vectorizer.Transform(normalized)

	metaVec, err := s.metaEncoder.Transform(category, hour)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"category":   category,
			"hour":       hour,
			"error":      err.Error(),
		}).Warn("Ticket metadata rejected by encoder")
		return resolution{}, dialogue.ErrInvalidTicketMeta
	}

	combined := make([]float64, 0, len(textVec)+len(metaVec))
	combined = append(combined, textVec...)
	combined = append(combined, metaVec...)

	probs := s.primary.PredictProba(combined)
	classes := s.primary.Classes()

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	confidence := probs[best]
	intent := entity.Intent{Base: classes[best]}

	if intent.Base == ProductInquiryLabel {
		intent.Sub = s.secondary.Predict(textVec)
	}

	if confidence < s.config.ConfidenceThreshold {
		if fallback, ok := s.fallbackIntent(text, mappings); ok {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"intent":     fallback.String(),
				"confidence": confidence,
			}).Debug("Intent resolved via keyword fallback")
			return resolution{Intent: fallback, Confidence: confidence, Fallback: true}, nil
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"confidence": confidence,
			"threshold":  s.config.ConfidenceThreshold,
		}).Info("Low confidence and no keyword match, escalating")
		return resolution{Confidence: confidence, Escalated: true}, nil
	}

	return resolution{Intent: intent, Confidence: confidence}, nil
}

// fallbackIntent scans the raw lowercased text against the keyword table in
// (priority, created_at) order; the first mapping with a matching phrase wins.
func (s *dialogueService) fallbackIntent(text string, mappings []entity.IntentMapping) (entity.Intent, bool) {
	textLower := strings.ToLower(text)

	for _, mapping := range mappings {
		if mapping.Intent == GreetingLabel {
			continue
		}
		for _, phrase := range mapping.Phrases {
			if phrase != "" && strings.Contains(textLower, phrase) {
				return entity.ParseIntent(mapping.Intent), true
			}
		}
	}

	return entity.Intent{}, false
}

func (s *dialogueService) isGreeting(text string, mappings []entity.IntentMapping) bool {
	textLower := strings.ToLower(text)

	for _, mapping := range mappings {
		if mapping.Intent != GreetingLabel {
			continue
		}
		for _, phrase := range mapping.Phrases {
			if phrase != "" && strings.Contains(textLower, phrase) {
				return true
			}
		}
	}

	return false
}

// loadMappings reads the fallback table from Postgres, falling back to the
// built-in defaults when the table is unreachable or empty.
func (s *dialogueService) loadMappings(ctx context.Context) []entity.IntentMapping {
	repo, err := s.dialogueRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to open repository client, using default keyword table")
		return defaultIntentMappings()
	}

	mappings, err := repo.Mappings.GetActiveMappings(ctx)
	if err != nil || len(mappings) == 0 {
		return defaultIntentMappings()
	}

	return mappings
}
