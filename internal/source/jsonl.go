package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// JSONLSource reads newline-delimited event frames from a reader, one
// object per line:
//
//	{"event": "sms-received", "payload": {...}}
//
// The payload may be an object or a string. Malformed lines are dropped.
type JSONLSource struct {
	r io.Reader
}

// NewJSONL creates a source over r.
func NewJSONL(r io.Reader) *JSONLSource {
	return &JSONLSource{r: r}
}

type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Subscribe reads frames until EOF or context cancellation, invoking the
// handler for each in arrival order.
func (s *JSONLSource) Subscribe(ctx context.Context, h Handler) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var f frame
		if err := json.Unmarshal(line, &f); err != nil || f.Event == "" {
			slog.Debug("dropping malformed event frame", "error", err)
			continue
		}

		var payload any
		if len(f.Payload) > 0 {
			if err := json.Unmarshal(f.Payload, &payload); err != nil {
				slog.Debug("dropping event with undecodable payload", "event", f.Event, "error", err)
				continue
			}
		}

		h(ctx, RawEvent{Name: f.Event, Payload: payload})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}
