package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the serialized bundle exported by the offline training pipeline.
// Loading it is the only place the backend touches model internals.
type Artifact struct {
	Vectorizer   TFIDFData   `json:"vectorizer"`
	Encoder      EncoderData `json:"encoder"`
	Primary      ModelData   `json:"primary"`
	Secondary    ModelData   `json:"secondary"`
	HistoryTexts []string    `json:"history_texts"`
}

type Models struct {
	Vectorizer   IVectorizer
	MetaEncoder  IMetaEncoder
	Primary      IPrimaryClassifier
	Secondary    ISecondaryClassifier
	HistoryTexts []string
}

func LoadArtifact(path string) (*Models, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	return BuildModels(artifact)
}

func BuildModels(artifact Artifact) (*Models, error) {
	vectorizer, err := NewTFIDFVectorizer(artifact.Vectorizer)
	if err != nil {
		return nil, err
	}

	encoder, err := NewOneHotEncoder(artifact.Encoder)
	if err != nil {
		return nil, err
	}

	primary, err := NewNaiveBayes(artifact.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary model: %w", err)
	}

	secondary, err := NewNaiveBayes(artifact.Secondary)
	if err != nil {
		return nil, fmt.Errorf("secondary model: %w", err)
	}

	return &Models{
		Vectorizer:   vectorizer,
		MetaEncoder:  encoder,
		Primary:      primary,
		Secondary:    secondary,
		HistoryTexts: artifact.HistoryTexts,
	}, nil
}
