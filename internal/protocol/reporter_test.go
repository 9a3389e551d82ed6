package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []OutboundMessage
	err  error
}

func (s *recordingSender) Send(_ context.Context, address, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, OutboundMessage{Address: address, Payload: body})
	return nil
}

func TestReporter_Report(t *testing.T) {
	sender := &recordingSender{}
	r := NewReporter(sender, "07041556156")

	require.NoError(t, r.Report(context.Background(), testEntry("42", "free airtime, click here")))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "07041556156", sender.sent[0].Address)

	var env ReportEnvelope
	require.NoError(t, json.Unmarshal([]byte(sender.sent[0].Payload), &env))
	assert.Equal(t, "42", env.ID)
	assert.Equal(t, "free airtime, click here", env.Body)
}

func TestReporter_SendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("radio off")}
	r := NewReporter(sender, "07041556156")

	err := r.Report(context.Background(), testEntry("42", "text"))
	assert.ErrorContains(t, err, "42")
}
