// Package classifier loads exported model artifacts into predict.Classifier
// implementations.
//
// Artifacts are JSON or YAML documents with a "kind" discriminator:
//
//	logistic  coefficients + intercept over the five features
//	forest    a list of decision trees voting by averaged leaf distributions
//	llm       zero-shot classification through a language model
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"gopkg.in/yaml.v3"

	"github.com/justsurfingit/lead-labeler/internal/predict"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrInvalidArtifact   = errors.New("invalid model artifact")
)

// Model kinds.
const (
	KindLogistic = "logistic"
	KindForest   = "forest"
	KindLLM      = "llm"
)

// Artifact is the on-disk description of a trained model.
type Artifact struct {
	Kind string `json:"kind" yaml:"kind"`

	// logistic
	Coef      []float64 `json:"coef,omitempty" yaml:"coef,omitempty"`
	Intercept float64   `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Threshold *float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// forest
	Trees []Tree `json:"trees,omitempty" yaml:"trees,omitempty"`

	// llm
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// Loader turns artifact files into classifiers. LLM is only needed for llm
// artifacts.
type Loader struct {
	LLM llms.Model
}

// LoadFile reads and builds the artifact at path.
func (l *Loader) LoadFile(path string) (predict.Classifier, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return l.Load(filepath.Ext(path), b)
}

// Load decodes content according to its file extension and builds the model.
func (l *Loader) Load(ext string, content []byte) (predict.Classifier, error) {
	a, err := Decode(ext, content)
	if err != nil {
		return nil, err
	}
	return l.Build(a)
}

// Decode parses an artifact. Pickled scikit-learn models are rejected: they
// must be exported to JSON or YAML first.
func Decode(ext string, content []byte) (*Artifact, error) {
	var a Artifact
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		if err := json.Unmarshal(content, &a); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(content, &a); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q (export the model to .json or .yaml)", ErrUnsupportedFormat, ext)
	}
	return &a, nil
}

// Build validates the artifact and returns the matching classifier.
func (l *Loader) Build(a *Artifact) (predict.Classifier, error) {
	switch a.Kind {
	case KindLogistic:
		return newLogistic(a)
	case KindForest:
		return newForest(a.Trees)
	case KindLLM:
		if l == nil || l.LLM == nil {
			return nil, fmt.Errorf("%w: llm model requires a configured LLM client", ErrInvalidArtifact)
		}
		if err := validatePrompt(a.Prompt); err != nil {
			return nil, err
		}
		return &LLMClassifier{Model: l.LLM, Prompt: a.Prompt}, nil
	case "":
		return nil, fmt.Errorf("%w: missing kind", ErrInvalidArtifact)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidArtifact, a.Kind)
	}
}
