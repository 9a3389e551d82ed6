package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/baitbusters/smsguard/internal/common"
	"github.com/baitbusters/smsguard/internal/model"
	"github.com/baitbusters/smsguard/internal/service"
)

// logKey is the fixed blob-store key for the serialized verdict log.
const logKey = "verdict_log_v1"

// VerdictLog is the system of record for classified messages: an in-memory,
// capacity-bounded list in most-recent-first order, persisted to a blob
// store after every mutation.
//
// All mutation happens under one mutex; event callbacks from overlapping
// sources may fire near-simultaneously, so read-modify-write of the log is
// a critical section.
//
// A persistence failure is non-fatal: the in-memory state stays
// authoritative for the session and the failure is logged.
type VerdictLog struct {
	mu       sync.Mutex
	store    service.BlobStore
	entries  []model.LogEntry // most recent first
	capacity int
}

// OpenVerdictLog loads the persisted log from the store. A missing blob
// starts an empty log; a corrupt blob is discarded with a warning rather
// than failing startup.
func OpenVerdictLog(ctx context.Context, store service.BlobStore, capacity int) (*VerdictLog, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: log capacity must be positive", common.ErrInvalidConfig)
	}

	l := &VerdictLog{store: store, capacity: capacity}

	data, err := store.Get(ctx, logKey)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(data, &l.entries); jsonErr != nil {
			slog.Warn("discarding corrupt verdict log blob", "error", jsonErr)
			l.entries = nil
		}
	case errors.Is(err, common.ErrNotFound):
		// First run.
	default:
		return nil, fmt.Errorf("failed to load verdict log: %w", err)
	}

	if len(l.entries) > capacity {
		l.entries = l.entries[:capacity]
	}

	return l, nil
}

// Append inserts a new entry at the head of the log. The body must be
// non-empty and not already present; the oldest entry is evicted when the
// capacity bound is exceeded.
func (l *VerdictLog) Append(ctx context.Context, entry model.LogEntry) error {
	if strings.TrimSpace(entry.Body) == "" {
		return common.ErrEmptyBody
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.Body == entry.Body {
			return fmt.Errorf("body already logged under id %s: %w", e.ID, common.ErrDuplicateEntry)
		}
	}

	l.entries = append([]model.LogEntry{entry}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}

	l.persist(ctx)
	return nil
}

// UpdateStatus sets the verdict for the entry with the given id and returns
// the updated entry. A confirmed entry never regresses to a lower verdict;
// such updates are a no-op. Missing ids return common.ErrNotFound.
func (l *VerdictLog) UpdateStatus(ctx context.Context, id string, status float64) (model.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID != id {
			continue
		}

		if l.entries[i].SpamStatus == model.VerdictConfirmed && status < model.VerdictConfirmed {
			return l.entries[i], nil
		}

		if l.entries[i].SpamStatus != status {
			l.entries[i].SpamStatus = status
			l.persist(ctx)
		}
		return l.entries[i], nil
	}

	return model.LogEntry{}, fmt.Errorf("entry %s: %w", id, common.ErrNotFound)
}

// Get returns the entry with the given id.
func (l *VerdictLog) Get(id string) (model.LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.LogEntry{}, false
}

// Entries returns a copy of the log in most-recent-first order.
func (l *VerdictLog) Entries() []model.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of logged entries.
func (l *VerdictLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Remove deletes a single entry by id.
func (l *VerdictLog) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			l.persist(ctx)
			return nil
		}
	}

	return fmt.Errorf("entry %s: %w", id, common.ErrNotFound)
}

// Clear removes every entry. This is the user-initiated clear-all action,
// not a protocol event.
func (l *VerdictLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.persist(ctx)
	return nil
}

// ExpirePending downgrades suspected entries older than ttl back to clean.
// A zero or negative ttl disables expiry. Confirmed entries are never
// touched.
func (l *VerdictLog) ExpirePending(ctx context.Context, ttl time.Duration, now time.Time) int {
	if ttl <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-ttl).UnixMilli()
	expired := 0
	for i := range l.entries {
		if l.entries[i].SpamStatus == model.VerdictSuspected && l.entries[i].ReceivedAt < cutoff {
			l.entries[i].SpamStatus = model.VerdictClean
			expired++
		}
	}

	if expired > 0 {
		slog.Info("expired pending entries", "count", expired, "ttl", ttl)
		l.persist(ctx)
	}
	return expired
}

// persist serializes the log and writes it back to the blob store. Callers
// must hold the mutex.
func (l *VerdictLog) persist(ctx context.Context) {
	data, err := json.Marshal(l.entries)
	if err != nil {
		slog.Warn("failed to serialize verdict log", "error", err)
		return
	}

	if err := l.store.Put(ctx, logKey, data); err != nil {
		slog.Warn("failed to persist verdict log", "error", err, "entries", len(l.entries))
	}
}
