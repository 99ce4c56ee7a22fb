package classifier

import (
	"fmt"
	"math"
)

type ModelData struct {
	Classes        []string    `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// naiveBayes is a multinomial naive Bayes scorer over pre-fit log
// probabilities. It backs both the primary and the sub-intent classifier.
type naiveBayes struct {
	classes        []string
	classLogPrior  []float64
	featureLogProb [][]float64
}

func NewNaiveBayes(data ModelData) (*naiveBayes, error) {
	if len(data.Classes) == 0 {
		return nil, fmt.Errorf("naive bayes: no classes")
	}
	if len(data.ClassLogPrior) != len(data.Classes) || len(data.FeatureLogProb) != len(data.Classes) {
		return nil, fmt.Errorf("naive bayes: %d classes but %d priors and %d likelihood rows",
			len(data.Classes), len(data.ClassLogPrior), len(data.FeatureLogProb))
	}

	return &naiveBayes{
		classes:        data.Classes,
		classLogPrior:  data.ClassLogPrior,
		featureLogProb: data.FeatureLogProb,
	}, nil
}

func (nb *naiveBayes) Classes() []string {
	return nb.classes
}

// PredictProba returns the class distribution aligned with Classes().
func (nb *naiveBayes) PredictProba(features []float64) []float64 {
	jll := make([]float64, len(nb.classes))

	for c := range nb.classes {
		score := nb.classLogPrior[c]
		row := nb.featureLogProb[c]
		for i, x := range features {
			if x != 0 && i < len(row) {
				score += x * row[i]
			}
		}
		jll[c] = score
	}

	// log-sum-exp normalization keeps the softmax numerically stable
	maxScore := jll[0]
	for _, s := range jll[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	var total float64
	probs := make([]float64, len(jll))
	for c, s := range jll {
		probs[c] = math.Exp(s - maxScore)
		total += probs[c]
	}
	for c := range probs {
		probs[c] /= total
	}

	return probs
}

func (nb *naiveBayes) Predict(features []float64) string {
	probs := nb.PredictProba(features)

	best := 0
	for c := range probs {
		if probs[c] > probs[best] {
			best = c
		}
	}

	return nb.classes[best]
}
