package protocol

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baitbusters/smsguard/internal/alert"
	"github.com/baitbusters/smsguard/internal/common"
	"github.com/baitbusters/smsguard/internal/model"
	"github.com/baitbusters/smsguard/internal/storage"
)

type memStore struct {
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, common.ErrNotFound)
	}
	return data, nil
}

func (s *memStore) Put(_ context.Context, key string, value []byte) error {
	s.blobs[key] = value
	return nil
}

func (s *memStore) Close() error { return nil }

type recordingDispatcher struct {
	raised []alert.Request
	err    error
}

func (d *recordingDispatcher) Raise(_ context.Context, req alert.Request) error {
	if d.err != nil {
		return d.err
	}
	d.raised = append(d.raised, req)
	return nil
}

func testEntry(id, body string) model.LogEntry {
	return model.LogEntry{
		ID:         id,
		Source:     "SMS",
		From:       "08011112222",
		Body:       body,
		SpamStatus: model.VerdictSuspected,
		ReceivedAt: 1700000000000,
	}
}

func newTestLog(t *testing.T, entries ...model.LogEntry) *storage.VerdictLog {
	t.Helper()

	log, err := storage.OpenVerdictLog(context.Background(), newMemStore(), 50)
	require.NoError(t, err)

	// Append in reverse so the first given entry ends up most recent.
	for i := len(entries) - 1; i >= 0; i-- {
		require.NoError(t, log.Append(context.Background(), entries[i]))
	}
	return log
}

func TestConfirmHandler_ConfirmRaisesCriticalAlert(t *testing.T) {
	log := newTestLog(t, testEntry("42", "You won a prize"))
	alerts := &recordingDispatcher{}
	h := NewConfirmHandler(log, alerts, "")

	h.Handle(context.Background(), `{"id":"42","spam_status":1}`)

	entry, ok := log.Get("42")
	require.True(t, ok)
	assert.Equal(t, model.VerdictConfirmed, entry.SpamStatus)

	require.Len(t, alerts.raised, 1)
	assert.Equal(t, alert.TierCritical, alerts.raised[0].Tier)
	assert.Contains(t, alerts.raised[0].Body, "You won a prize")
}

func TestConfirmHandler_CleanVerdictIsSilent(t *testing.T) {
	log := newTestLog(t, testEntry("42", "harmless after all"))
	alerts := &recordingDispatcher{}
	h := NewConfirmHandler(log, alerts, "")

	h.Handle(context.Background(), `{"id":"42","spam_status":0}`)

	entry, ok := log.Get("42")
	require.True(t, ok)
	assert.Equal(t, model.VerdictClean, entry.SpamStatus)
	assert.Empty(t, alerts.raised)
}

func TestConfirmHandler_SentinelIgnored(t *testing.T) {
	log := newTestLog(t, testEntry("42", "pending"))
	alerts := &recordingDispatcher{}
	h := NewConfirmHandler(log, alerts, "")

	h.Handle(context.Background(), "-1")

	entry, _ := log.Get("42")
	assert.Equal(t, model.VerdictSuspected, entry.SpamStatus)
	assert.Empty(t, alerts.raised)
}

func TestConfirmHandler_CustomSentinel(t *testing.T) {
	log := newTestLog(t, testEntry("42", "pending"))
	alerts := &recordingDispatcher{}
	h := NewConfirmHandler(log, alerts, "NOOP")

	h.Handle(context.Background(), "NOOP")

	entry, _ := log.Get("42")
	assert.Equal(t, model.VerdictSuspected, entry.SpamStatus)
	assert.Empty(t, alerts.raised)
}

func TestConfirmHandler_UnknownIDNeverCreatesEntries(t *testing.T) {
	log := newTestLog(t)
	alerts := &recordingDispatcher{}
	h := NewConfirmHandler(log, alerts, "")

	h.Handle(context.Background(), `{"id":"ghost","spam_status":1}`)

	assert.Equal(t, 0, log.Len())
	assert.Empty(t, alerts.raised)
}

func TestConfirmHandler_MalformedReplyDropped(t *testing.T) {
	log := newTestLog(t, testEntry("42", "pending"))
	alerts := &recordingDispatcher{}
	h := NewConfirmHandler(log, alerts, "")

	h.Handle(context.Background(), "garbage reply")

	entry, _ := log.Get("42")
	assert.Equal(t, model.VerdictSuspected, entry.SpamStatus)
	assert.Empty(t, alerts.raised)
}

func TestConfirmHandler_DuplicateConfirmIsIdempotentOnLog(t *testing.T) {
	log := newTestLog(t, testEntry("42", "pending"))
	alerts := &recordingDispatcher{}
	h := NewConfirmHandler(log, alerts, "")

	h.Handle(context.Background(), `{"id":"42","spam_status":1}`)
	h.Handle(context.Background(), `{"id":"42","spam_status":1}`)

	entry, _ := log.Get("42")
	assert.Equal(t, model.VerdictConfirmed, entry.SpamStatus)
	assert.Equal(t, 1, log.Len())
}

func TestConfirmHandler_NeverRegressesConfirmed(t *testing.T) {
	log := newTestLog(t, testEntry("42", "pending"))
	alerts := &recordingDispatcher{}
	h := NewConfirmHandler(log, alerts, "")

	h.Handle(context.Background(), `{"id":"42","spam_status":1}`)
	h.Handle(context.Background(), `{"id":"42","spam_status":0}`)

	entry, _ := log.Get("42")
	assert.Equal(t, model.VerdictConfirmed, entry.SpamStatus)
}

func TestConfirmHandler_AlertFailureDoesNotUndoUpdate(t *testing.T) {
	log := newTestLog(t, testEntry("42", "pending"))
	alerts := &recordingDispatcher{err: errors.New("renderer down")}
	h := NewConfirmHandler(log, alerts, "")

	h.Handle(context.Background(), `{"id":"42","spam_status":1}`)

	entry, _ := log.Get("42")
	assert.Equal(t, model.VerdictConfirmed, entry.SpamStatus)
}
