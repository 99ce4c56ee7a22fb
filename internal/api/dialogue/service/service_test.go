package dialogueService

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config := LoadConfig()

	assert.Equal(t, 0.4, config.ConfidenceThreshold)
	assert.Equal(t, "Electronics", config.DefaultCategory)
	assert.Equal(t, 12, config.DefaultHour)
	assert.Equal(t, 50, config.HistoryLimit)
	assert.Equal(t, 3, config.SimilarNeighbors)
}

func TestLoadConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("DIALOGUE_CONFIDENCE_THRESHOLD", "0.75")
	t.Setenv("DEFAULT_PRODUCT_CATEGORY", "Appliances")
	t.Setenv("SESSION_HISTORY_LIMIT", "10")

	config := LoadConfig()

	assert.Equal(t, 0.75, config.ConfidenceThreshold)
	assert.Equal(t, "Appliances", config.DefaultCategory)
	assert.Equal(t, 10, config.HistoryLimit)
}

func TestLoadConfig_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("DIALOGUE_CONFIDENCE_THRESHOLD", "not-a-number")
	t.Setenv("SESSION_HISTORY_LIMIT", "-5")

	config := LoadConfig()

	assert.Equal(t, 0.4, config.ConfidenceThreshold)
	assert.Equal(t, 50, config.HistoryLimit)
}
