package classifier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact() Artifact {
	return Artifact{
		Vectorizer: TFIDFData{
			Vocabulary: map[string]int{"refund": 0, "broken": 1, "laptop": 2},
			IDF:        []float64{1.0, 1.5, 2.0},
		},
		Encoder: EncoderData{
			Categories: []string{"Electronics", "Clothing"},
		},
		Primary: ModelData{
			Classes:       []string{"Refund request", "Technical issue"},
			ClassLogPrior: []float64{math.Log(0.5), math.Log(0.5)},
			FeatureLogProb: [][]float64{
				{math.Log(0.8), math.Log(0.1), math.Log(0.1)},
				{math.Log(0.1), math.Log(0.8), math.Log(0.1)},
			},
		},
		Secondary: ModelData{
			Classes:       []string{"Warranty", "Availability"},
			ClassLogPrior: []float64{math.Log(0.5), math.Log(0.5)},
			FeatureLogProb: [][]float64{
				{math.Log(0.9), math.Log(0.1), math.Log(0.1)},
				{math.Log(0.1), math.Log(0.9), math.Log(0.1)},
			},
		},
	}
}

func TestTFIDFTransform(t *testing.T) {
	v, err := NewTFIDFVectorizer(testArtifact().Vectorizer)
	require.NoError(t, err)

	features := v.Transform("refund broken unknownterm")
	require.Len(t, features, 3)

	// l2 norm of (1.0, 1.5, 0)
	norm := math.Sqrt(1.0 + 2.25)
	assert.InDelta(t, 1.0/norm, features[0], 1e-9)
	assert.InDelta(t, 1.5/norm, features[1], 1e-9)
	assert.Zero(t, features[2])
}

func TestTFIDFTransformEmpty(t *testing.T) {
	v, err := NewTFIDFVectorizer(testArtifact().Vectorizer)
	require.NoError(t, err)

	features := v.Transform("")
	for _, f := range features {
		assert.Zero(t, f)
	}
}

func TestOneHotEncoder(t *testing.T) {
	enc, err := NewOneHotEncoder(testArtifact().Encoder)
	require.NoError(t, err)

	features, err := enc.Transform("Electronics", 12)
	require.NoError(t, err)
	require.Len(t, features, 2+24)
	assert.Equal(t, 1.0, features[0])
	assert.Equal(t, 1.0, features[2+12])

	sum := 0.0
	for _, f := range features {
		sum += f
	}
	assert.Equal(t, 2.0, sum)
}

func TestOneHotEncoderRejectsMalformedMeta(t *testing.T) {
	enc, err := NewOneHotEncoder(testArtifact().Encoder)
	require.NoError(t, err)

	_, err = enc.Transform("Groceries", 12)
	assert.Error(t, err)

	_, err = enc.Transform("Electronics", 24)
	assert.Error(t, err)

	_, err = enc.Transform("Electronics", -1)
	assert.Error(t, err)
}

func TestNaiveBayesPredictProba(t *testing.T) {
	nb, err := NewNaiveBayes(testArtifact().Primary)
	require.NoError(t, err)

	probs := nb.PredictProba([]float64{1, 0, 0})
	require.Len(t, probs, 2)

	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[0], probs[1], "refund feature must favor Refund request")
}

func TestNaiveBayesPredict(t *testing.T) {
	nb, err := NewNaiveBayes(testArtifact().Secondary)
	require.NoError(t, err)

	assert.Equal(t, "Warranty", nb.Predict([]float64{1, 0, 0}))
	assert.Equal(t, "Availability", nb.Predict([]float64{0, 1, 0}))
}

func TestBuildModelsValidatesShapes(t *testing.T) {
	artifact := testArtifact()
	artifact.Primary.ClassLogPrior = []float64{0}

	_, err := BuildModels(artifact)
	assert.Error(t, err)
}
