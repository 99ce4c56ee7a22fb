package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SupportDesk/pkg/classifier"
)

func testVectorizer(t *testing.T) classifier.IVectorizer {
	t.Helper()

	v, err := classifier.NewTFIDFVectorizer(classifier.TFIDFData{
		Vocabulary: map[string]int{
			"refund": 0, "laptop": 1, "broken": 2, "bill": 3, "charged": 4,
		},
		IDF: []float64{1, 1, 1, 1, 1},
	})
	require.NoError(t, err)
	return v
}

func TestNearestRanksByCosineDistance(t *testing.T) {
	idx := NewIndex(testVectorizer(t), []string{
		"I want a refund for my laptop",
		"my bill was charged twice",
		"the laptop screen is broken",
	})
	require.Equal(t, 3, idx.Size())

	neighbors := idx.Nearest("refund laptop", 2)
	require.Len(t, neighbors, 2)
	assert.Equal(t, "I want a refund for my laptop", neighbors[0].Text)
	assert.Less(t, neighbors[0].Distance, neighbors[1].Distance)
}

func TestNearestOutOfVocabulary(t *testing.T) {
	idx := NewIndex(testVectorizer(t), []string{"refund laptop"})

	assert.Nil(t, idx.Nearest("zzz qqq", 3))
	assert.Nil(t, idx.Nearest("refund", 0))
}

func TestIndexSkipsEmptyVectors(t *testing.T) {
	idx := NewIndex(testVectorizer(t), []string{
		"refund laptop",
		"completely out of vocabulary sentence",
	})

	assert.Equal(t, 1, idx.Size())
}
