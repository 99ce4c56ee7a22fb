package classifier

import (
	"fmt"
	"math"
	"strings"
)

type TFIDFData struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

type tfidfVectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

func NewTFIDFVectorizer(data TFIDFData) (IVectorizer, error) {
	if len(data.Vocabulary) == 0 {
		return nil, fmt.Errorf("tfidf vectorizer: empty vocabulary")
	}

	for term, idx := range data.Vocabulary {
		if idx < 0 || idx >= len(data.IDF) {
			return nil, fmt.Errorf("tfidf vectorizer: term %q index %d out of idf range %d", term, idx, len(data.IDF))
		}
	}

	return &tfidfVectorizer{
		vocabulary: data.Vocabulary,
		idf:        data.IDF,
	}, nil
}

// Transform maps normalized text onto the fitted vocabulary: term counts
// weighted by idf, then l2-normalized. Out-of-vocabulary tokens are ignored.
func (v *tfidfVectorizer) Transform(text string) []float64 {
	features := make([]float64, len(v.idf))

	for _, token := range strings.Fields(text) {
		if idx, ok := v.vocabulary[token]; ok {
			features[idx] += 1.0
		}
	}

	var norm float64
	for i := range features {
		if features[i] > 0 {
			features[i] *= v.idf[i]
			norm += features[i] * features[i]
		}
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range features {
			features[i] /= norm
		}
	}

	return features
}
