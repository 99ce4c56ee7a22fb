package dialogueService

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SupportDesk/internal/entity"
)

func TestExtractSlots(t *testing.T) {
	tests := []struct {
		name     string
		intent   entity.Intent
		text     string
		expected map[string]string
	}{
		{
			name:   "refund with everything in one message",
			intent: entity.Intent{Base: "Refund request"},
			text:   "My laptop from order 482910 arrived broken",
			expected: map[string]string{
				"product_name": "laptop",
				"order_id":     "482910",
				"reason":       "broken",
			},
		},
		{
			name:     "billing only wants the order id",
			intent:   entity.Intent{Base: "Billing inquiry"},
			text:     "the laptop bill for order 123456 is broken",
			expected: map[string]string{"order_id": "123456"},
		},
		{
			name:   "technical issue fills issue_description",
			intent: entity.Intent{Base: "Technical issue"},
			text:   "my router stopped working",
			expected: map[string]string{
				"product_name":      "router",
				"issue_description": "stopped working",
			},
		},
		{
			name:     "short digit runs are not order ids",
			intent:   entity.Intent{Base: "Cancellation request"},
			text:     "cancel order 12345",
			expected: map[string]string{},
		},
		{
			name:     "first product keyword wins",
			intent:   entity.Intent{Base: "Product inquiry"},
			text:     "is the tv better than the laptop",
			expected: map[string]string{"product_name": "tv"},
		},
		{
			name:     "nothing extractable",
			intent:   entity.Intent{Base: "Refund request"},
			text:     "I am unhappy with my purchase",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSlots(tt.intent, tt.text))
		})
	}
}

func TestRequiredSlots_SubIntentInheritsBase(t *testing.T) {
	known := entity.Intent{Base: "Product inquiry", Sub: "Warranty"}
	assert.Equal(t, []string{"product_name", "order_id"}, requiredSlots(known))

	// A sub-label without its own schema entry falls back to the base.
	unknown := entity.Intent{Base: "Product inquiry", Sub: "Pricing"}
	assert.Equal(t, []string{"product_name", "order_id"}, requiredSlots(unknown))

	assert.Nil(t, requiredSlots(entity.Intent{Base: "Nonexistent"}))
}

func TestFormatSlots_SchemaOrder(t *testing.T) {
	intent := entity.Intent{Base: "Refund request"}
	slots := map[string]string{
		"reason":       "broken",
		"order_id":     "778823",
		"product_name": "laptop",
	}

	assert.Equal(t, "product_name=laptop, order_id=778823, reason=broken", formatSlots(intent, slots))
}
