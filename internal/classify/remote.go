package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/baitbusters/smsguard/internal/common"
	"github.com/baitbusters/smsguard/internal/service"
)

// RemoteClassifier scores text against the hosted scoring service.
type RemoteClassifier struct {
	baseURL string
	client  *http.Client
	retry   service.RetryOptions
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Probability float64 `json:"probability"`
}

// NewRemote creates a classifier client for the scoring service at baseURL.
func NewRemote(baseURL string, maxRetries int, retryDelay time.Duration) *RemoteClassifier {
	retry := service.RetryOptions{
		MaxAttempts:  maxRetries,
		InitialDelay: retryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retry.MaxAttempts == 0 {
		retry.MaxAttempts = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = time.Second
	}

	return &RemoteClassifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		retry:   retry,
	}
}

// Classify posts the text to the scoring service and returns its
// probability. Transient failures are retried with backoff.
func (c *RemoteClassifier) Classify(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, common.ErrInvalidInput
	}

	var probability float64

	err := common.WithRetry(ctx, func() error {
		p, err := c.predict(ctx, text)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		probability = p
		return nil
	}, c.retry)

	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrModelLoad, err)
	}

	return probability, nil
}

func (c *RemoteClassifier) predict(ctx context.Context, text string) (float64, error) {
	payload, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call scoring service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("scoring service returned %d: %s", resp.StatusCode, string(body))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Probability < 0 || out.Probability > 1 {
		return 0, fmt.Errorf("scoring service returned probability out of range: %f", out.Probability)
	}

	return out.Probability, nil
}
