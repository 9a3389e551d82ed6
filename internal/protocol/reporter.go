package protocol

import (
	"context"
	"fmt"

	"github.com/baitbusters/smsguard/internal/model"
	"github.com/baitbusters/smsguard/internal/transport"
)

// Reporter sends report envelopes for suspected entries to the verification
// endpoint. Sends are fire-and-forget; no delivery acknowledgement exists.
type Reporter struct {
	sender  transport.Sender
	address string
}

// NewReporter creates a reporter addressed at the verification endpoint.
func NewReporter(sender transport.Sender, address string) *Reporter {
	return &Reporter{sender: sender, address: address}
}

// Report builds and sends the envelope for a suspected entry. Callers must
// have fully persisted the entry first, otherwise a fast reply could race
// the insert.
func (r *Reporter) Report(ctx context.Context, entry model.LogEntry) error {
	payload, err := BuildAction(entry, r.address)
	if err != nil {
		return err
	}

	if err := r.sender.Send(ctx, payload.Address, payload.Payload); err != nil {
		return fmt.Errorf("send report for entry %s: %w", entry.ID, err)
	}

	return nil
}

// OutboundMessage is a fully prepared report send: destination address plus
// serialized envelope.
type OutboundMessage struct {
	Address string
	Payload string
}

// BuildAction prepares the outbound report message for an entry without
// sending it, for embedding in an actionable alert.
func BuildAction(entry model.LogEntry, address string) (OutboundMessage, error) {
	payload, err := ReportEnvelope{ID: entry.ID, Body: entry.Body}.Encode()
	if err != nil {
		return OutboundMessage{}, err
	}
	return OutboundMessage{Address: address, Payload: payload}, nil
}
