// Package classify wraps the opaque phishing-scoring model behind a small
// interface so the pipeline can run against a deterministic stub in tests.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Classifier scores message text for phishing probability.
//
// Classify returns a probability in [0, 1]. Empty (after trimming) text
// yields common.ErrInvalidInput; a scoring resource that cannot be loaded
// yields an error wrapping common.ErrModelLoad, and the next call retries
// the load.
type Classifier interface {
	Classify(ctx context.Context, text string) (float64, error)
}

// Config selects and configures a classifier implementation.
type Config struct {
	// Provider is "local" (weights file) or "remote" (scoring service).
	Provider string

	// ModelPath is the weights file for the local provider.
	ModelPath string

	// ServiceURL is the base URL of the remote scoring service.
	ServiceURL string

	MaxRetries int
	RetryDelay time.Duration
}

// New builds a classifier from configuration.
func New(cfg Config) (Classifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "local":
		if cfg.ModelPath == "" {
			return nil, fmt.Errorf("local classifier requires a model path")
		}
		return NewLocal(cfg.ModelPath), nil
	case "remote":
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("remote classifier requires a service URL")
		}
		return NewRemote(cfg.ServiceURL, cfg.MaxRetries, cfg.RetryDelay), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}
}
