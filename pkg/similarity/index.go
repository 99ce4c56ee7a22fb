package similarity

import (
	"math"
	"sort"

	"SupportDesk/pkg/classifier"
	"SupportDesk/pkg/textnorm"
)

type Neighbor struct {
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

type IIndex interface {
	Nearest(text string, k int) []Neighbor
	Size() int
}

// index holds the vectorized historical ticket texts for cosine
// nearest-neighbor lookups. Built once at startup, read-only afterwards.
type index struct {
	vectorizer classifier.IVectorizer
	texts      []string
	vectors    [][]float64
}

func NewIndex(vectorizer classifier.IVectorizer, texts []string) IIndex {
	vectors := make([][]float64, 0, len(texts))
	kept := make([]string, 0, len(texts))

	for _, text := range texts {
		vec := vectorizer.Transform(textnorm.Normalize(text))
		if isZero(vec) {
			continue
		}
		vectors = append(vectors, vec)
		kept = append(kept, text)
	}

	return &index{
		vectorizer: vectorizer,
		texts:      kept,
		vectors:    vectors,
	}
}

func (idx *index) Size() int {
	return len(idx.texts)
}

// Nearest returns up to k historical texts ranked by cosine distance to the
// query. A query with no in-vocabulary tokens yields no neighbors.
func (idx *index) Nearest(text string, k int) []Neighbor {
	if k <= 0 || len(idx.vectors) == 0 {
		return nil
	}

	query := idx.vectorizer.Transform(textnorm.Normalize(text))
	if isZero(query) {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(idx.vectors))
	for i, vec := range idx.vectors {
		neighbors = append(neighbors, Neighbor{
			Text:     idx.texts[i],
			Distance: 1.0 - dot(query, vec),
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}

	return neighbors
}

// dot over l2-normalized vectors is the cosine similarity.
func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}

	if math.IsNaN(sum) {
		return 0
	}
	return sum
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
