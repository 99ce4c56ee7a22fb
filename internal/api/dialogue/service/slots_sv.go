package dialogueService

import (
	"regexp"
	"strings"

	"SupportDesk/internal/entity"
)

// intentSlots maps intents to their required slots in prompting order.
// Sub-intents inherit the base entry unless they carry their own.
var intentSlots = map[string][]string{
	"Refund request":                      {"product_name", "order_id", "reason"},
	"Technical issue":                     {"product_name", "order_id", "issue_description"},
	"Billing inquiry":                     {"order_id"},
	"Cancellation request":                {"order_id"},
	"Product inquiry":                     {"product_name", "order_id"},
	"Product inquiry → Warranty":          {"product_name", "order_id"},
	"Product inquiry → Availability":      {"product_name", "order_id"},
	"Product inquiry → Specification":     {"product_name", "order_id"},
}

var productKeywords = []string{"tv", "laptop", "fan", "shirt", "book", "phone", "headphones", "router"}

var problemPhrases = []string{"not working", "broken", "damaged", "defective", "stopped working"}

var orderIDPattern = regexp.MustCompile(`\b\d{6,}\b`)

func requiredSlots(intent entity.Intent) []string {
	if slots, ok := intentSlots[intent.String()]; ok {
		return slots
	}
	return intentSlots[intent.Base]
}

// extractSlots pulls slot values out of a single utterance with first-match
// substring rules. Slots it cannot find are simply absent, never an error.
func extractSlots(intent entity.Intent, text string) map[string]string {
	slots := requiredSlots(intent)
	extracted := make(map[string]string)
	textLower := strings.ToLower(text)

	wants := make(map[string]bool, len(slots))
	for _, slot := range slots {
		wants[slot] = true
	}

	if wants["product_name"] {
		for _, word := range productKeywords {
			if strings.Contains(textLower, word) {
				extracted["product_name"] = word
				break
			}
		}
	}

	if wants["order_id"] {
		if match := orderIDPattern.FindString(textLower); match != "" {
			extracted["order_id"] = match
		}
	}

	if wants["reason"] || wants["issue_description"] {
		for _, phrase := range problemPhrases {
			if strings.Contains(textLower, phrase) {
				if wants["reason"] {
					extracted["reason"] = phrase
				}
				if wants["issue_description"] {
					extracted["issue_description"] = phrase
				}
				break
			}
		}
	}

	return extracted
}
