package classifier

import (
	"fmt"
)

type EncoderData struct {
	Categories []string `json:"categories"`
}

type oneHotEncoder struct {
	categories map[string]int
	width      int
}

const hourSlots = 24

func NewOneHotEncoder(data EncoderData) (IMetaEncoder, error) {
	if len(data.Categories) == 0 {
		return nil, fmt.Errorf("meta encoder: no fitted categories")
	}

	categories := make(map[string]int, len(data.Categories))
	for i, c := range data.Categories {
		categories[c] = i
	}

	return &oneHotEncoder{
		categories: categories,
		width:      len(data.Categories) + hourSlots,
	}, nil
}

// Transform one-hot encodes the ticket metadata. Values outside the fitted
// shape are rejected, matching the encoder behavior the models were fit with.
func (e *oneHotEncoder) Transform(category string, hour int) ([]float64, error) {
	idx, ok := e.categories[category]
	if !ok {
		return nil, fmt.Errorf("meta encoder: unknown product category %q", category)
	}

	if hour < 0 || hour >= hourSlots {
		return nil, fmt.Errorf("meta encoder: ticket hour %d outside 0-23", hour)
	}

	features := make([]float64, e.width)
	features[idx] = 1.0
	features[len(e.categories)+hour] = 1.0

	return features, nil
}
