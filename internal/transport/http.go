package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSender relays outbound messages through an SMS gateway service.
type HTTPSender struct {
	url    string
	client *http.Client
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// NewHTTPSender creates a sender that posts to the gateway relay at url.
func NewHTTPSender(url string) *HTTPSender {
	return &HTTPSender{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts the message to the gateway relay.
func (s *HTTPSender) Send(ctx context.Context, address, body string) error {
	payload, err := json.Marshal(sendRequest{To: address, Body: body})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call gateway relay: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway relay returned %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}
