// Package transport provides the outbound send capability for report
// envelopes. Sends are fire-and-forget from the pipeline's perspective; no
// delivery acknowledgement is modeled.
package transport

import (
	"context"
	"log/slog"
)

// Sender delivers an outbound message body to an address.
type Sender interface {
	Send(ctx context.Context, address, body string) error
}

// SlogSender logs outbound sends instead of delivering them. Used for dry
// runs and as the default when no gateway relay is configured.
type SlogSender struct{}

// Send logs the outbound message.
func (SlogSender) Send(_ context.Context, address, body string) error {
	slog.Info("outbound message", "address", address, "body", body)
	return nil
}
