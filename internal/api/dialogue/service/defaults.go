package dialogueService

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"SupportDesk/internal/entity"
)

const (
	ProductInquiryLabel = "Product inquiry"
	GreetingLabel       = "Greeting"
)

// defaultIntentMappings is the built-in keyword fallback table. It seeds the
// intent_mappings table on first boot and backs the resolver whenever the
// table is unreachable or empty, so the bot never loses its fallback path.
func defaultIntentMappings() []entity.IntentMapping {
	now := time.Now()
	rows := []struct {
		intent  string
		phrases []string
	}{
		{"Refund request", []string{
			"return", "refund", "get my money back", "money refund",
			"wrong product", "want refund", "replace", "replacement",
		}},
		{"Technical issue", []string{
			"not working", "broken", "issue", "problem", "error",
			"damaged", "malfunction", "doesn't start", "crashed",
			"stuck", "hang", "overheating", "battery issue",
		}},
		{"Billing inquiry", []string{
			"bill", "payment", "charged", "invoice", "extra charge",
			"wrong amount", "billing", "double charged", "not received bill",
		}},
		{"Cancellation request", []string{
			"cancel", "cancellation", "stop order", "don't want",
			"terminate", "abort order", "hold my order",
		}},
		{ProductInquiryLabel, []string{
			"specification", "specs", "features", "available",
			"availability", "warranty", "details", "info",
			"in stock", "how long warranty", "is it available",
		}},
		{GreetingLabel, []string{
			"hello", "hi", "hey", "good morning", "good evening", "greetings",
		}},
	}

	mappings := make([]entity.IntentMapping, 0, len(rows))
	for i, row := range rows {
		mappings = append(mappings, entity.IntentMapping{
			ID:        "default-" + row.intent,
			Intent:    row.intent,
			Phrases:   row.phrases,
			Priority:  i,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return mappings
}

// EnsureDefaultMappings seeds the intent_mappings table on first boot. An
// already-populated table is left alone so console edits survive restarts.
func (s *dialogueService) EnsureDefaultMappings(ctx context.Context) error {
	repo, err := s.dialogueRepo.NewClient(false)
	if err != nil {
		return err
	}

	existing, err := repo.Mappings.GetActiveMappings(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, mapping := range defaultIntentMappings() {
		id, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			return err
		}
		mapping.ID = id

		if err := repo.Mappings.CreateMapping(ctx, mapping); err != nil {
			return err
		}
	}

	s.log.WithFields(logrus.Fields{
		"mappings": len(defaultIntentMappings()),
	}).Info("Seeded default intent mappings")

	return nil
}
