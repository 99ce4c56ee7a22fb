package classifier

// The dialogue service receives the trained models as opaque capabilities and
// never depends on how they were fit or serialized.

type IVectorizer interface {
	Transform(text string) []float64
}

type IMetaEncoder interface {
	Transform(category string, hour int) ([]float64, error)
}

type IPrimaryClassifier interface {
	PredictProba(features []float64) []float64
	Classes() []string
}

type ISecondaryClassifier interface {
	Predict(features []float64) string
}
