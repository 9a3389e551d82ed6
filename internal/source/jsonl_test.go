package source

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, input string) []RawEvent {
	t.Helper()

	var got []RawEvent
	src := NewJSONL(strings.NewReader(input))
	err := src.Subscribe(context.Background(), func(_ context.Context, evt RawEvent) {
		got = append(got, evt)
	})
	require.NoError(t, err)
	return got
}

func TestJSONLSource_DeliversInOrder(t *testing.T) {
	input := `{"event":"sms-received","payload":{"messageBody":"first"}}
{"event":"notification-received","payload":{"text":"second"}}
{"event":"sms-received","payload":{"messageBody":"third"}}
`

	got := collect(t, input)
	require.Len(t, got, 3)
	assert.Equal(t, EventSMS, got[0].Name)
	assert.Equal(t, EventNotification, got[1].Name)
	assert.Equal(t, EventSMS, got[2].Name)

	payload, ok := got[0].Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "first", payload["messageBody"])
}

func TestJSONLSource_StringPayload(t *testing.T) {
	got := collect(t, `{"event":"sms-received","payload":"{\"messageBody\":\"inner\"}"}`+"\n")

	require.Len(t, got, 1)
	assert.Equal(t, `{"messageBody":"inner"}`, got[0].Payload)
}

func TestJSONLSource_SkipsMalformedLines(t *testing.T) {
	input := `not json
{"event":"sms-received","payload":{"messageBody":"good"}}

{"payload":{"messageBody":"missing event"}}
{"event":"sms-received","payload":}
`

	got := collect(t, input)
	require.Len(t, got, 1)
	assert.Equal(t, EventSMS, got[0].Name)
}

func TestJSONLSource_MissingPayload(t *testing.T) {
	got := collect(t, `{"event":"sms-received"}`+"\n")

	require.Len(t, got, 1)
	assert.Nil(t, got[0].Payload)
}

func TestListener_StopIsIdempotent(t *testing.T) {
	blocker := make(chan struct{})
	src := &blockingSource{unblock: blocker}

	l := Start(context.Background(), src, func(context.Context, RawEvent) {})

	done := make(chan struct{})
	go func() {
		l.Stop()
		l.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	select {
	case <-l.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
}

func TestListener_DoneClosesWhenSourceDrains(t *testing.T) {
	l := Start(context.Background(), NewJSONL(strings.NewReader("")), func(context.Context, RawEvent) {})

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after source drained")
	}
}

// blockingSource blocks until its context is canceled.
type blockingSource struct {
	unblock chan struct{}
}

func (s *blockingSource) Subscribe(ctx context.Context, _ Handler) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.unblock:
		return nil
	}
}
