package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/baitbusters/smsguard/internal/common"
)

// LocalClassifier scores text with a logistic-regression weights file
// exported from the trained phishing model. The file is loaded lazily on
// first use and memoized for the life of the process; concurrent first
// callers share a single in-flight load.
type LocalClassifier struct {
	path  string
	mu    sync.Mutex
	model *weightsModel
}

type weightsModel struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// NewLocal creates a classifier backed by the weights file at path. The
// file is not touched until the first Classify call.
func NewLocal(path string) *LocalClassifier {
	return &LocalClassifier{path: path}
}

// Classify scores the text. Stateless between calls once the model is
// loaded, so concurrent classification is safe.
func (c *LocalClassifier) Classify(_ context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, common.ErrInvalidInput
	}

	m, err := c.load()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrModelLoad, err)
	}

	return m.score(text), nil
}

// load returns the memoized model, reading it from disk on first call.
// A failed load is not memoized; the next call retries.
func (c *LocalClassifier) load() (*weightsModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil {
		return c.model, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}

	var m weightsModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse weights file: %w", err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("weights file %s has no weights", c.path)
	}

	c.model = &m
	slog.Info("classifier model loaded", "path", c.path, "terms", len(m.Weights))
	return c.model, nil
}

func (m *weightsModel) score(text string) float64 {
	z := m.Bias
	for _, tok := range tokenize(text) {
		z += m.Weights[tok]
	}
	return 1 / (1 + math.Exp(-z))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
