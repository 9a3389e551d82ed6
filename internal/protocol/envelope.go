// Package protocol implements the report/confirm correlation protocol: a
// request/reply exchange multiplexed over an SMS-shaped transport with no
// built-in correlation or delivery guarantee. Outbound reports carry the
// entry's correlation id; asynchronous confirmation replies are matched
// back against the verdict log by that id.
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSentinel is the single-character no-op reply the gateway may emit
// synchronously after a report send, before the real confirmation arrives.
const DefaultSentinel = "-1"

// ReportEnvelope is the outbound wire payload for a suspected message.
type ReportEnvelope struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// Encode serializes the envelope for the transport.
func (e ReportEnvelope) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode report envelope: %w", err)
	}
	return string(data), nil
}

// ConfirmEnvelope is the inbound wire payload carrying a verdict for a
// previously reported message.
type ConfirmEnvelope struct {
	ID         string
	SpamStatus float64
}

// DecodeConfirm parses a confirmation reply body. The transport smuggles
// control characters into payloads, so they are stripped before parsing;
// spam_status may arrive as a number or a numeric string.
func DecodeConfirm(body string) (ConfirmEnvelope, error) {
	sanitized := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, body)

	var raw struct {
		ID         any             `json:"id"`
		SpamStatus json.RawMessage `json:"spam_status"`
	}
	if err := json.Unmarshal([]byte(sanitized), &raw); err != nil {
		return ConfirmEnvelope{}, fmt.Errorf("parse confirm envelope: %w", err)
	}

	id, ok := raw.ID.(string)
	if !ok {
		return ConfirmEnvelope{}, fmt.Errorf("confirm envelope id is not a string")
	}

	status, err := coerceStatus(raw.SpamStatus)
	if err != nil {
		return ConfirmEnvelope{}, err
	}

	return ConfirmEnvelope{ID: id, SpamStatus: status}, nil
}

func coerceStatus(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("confirm envelope has no spam_status")
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("confirm envelope spam_status %q is not numeric", s)
		}
		return n, nil
	}

	return 0, fmt.Errorf("confirm envelope spam_status has unsupported type")
}
