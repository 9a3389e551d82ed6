package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baitbusters/smsguard/internal/alert"
	"github.com/baitbusters/smsguard/internal/common"
	"github.com/baitbusters/smsguard/internal/model"
	"github.com/baitbusters/smsguard/internal/storage"
)

// ConfirmHandler resolves inbound confirmation replies against the verdict
// log. The log is the sole source of truth: a reply that matches no
// existing entry is dropped, never inserted.
//
// The transport is noisy and replies may be duplicated; applying the same
// envelope twice rewrites the entry to the same value, so no explicit
// replay detection is needed.
type ConfirmHandler struct {
	log      *storage.VerdictLog
	alerts   alert.Dispatcher
	sentinel string
}

// NewConfirmHandler creates a handler over the given log and dispatcher.
func NewConfirmHandler(log *storage.VerdictLog, alerts alert.Dispatcher, sentinel string) *ConfirmHandler {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return &ConfirmHandler{log: log, alerts: alerts, sentinel: sentinel}
}

// Handle processes one reply body from the verification endpoint. All
// failure modes are expected, non-exceptional outcomes and drop silently.
func (h *ConfirmHandler) Handle(ctx context.Context, body string) {
	if body == h.sentinel {
		slog.Debug("ignoring sentinel reply")
		return
	}

	env, err := DecodeConfirm(body)
	if err != nil {
		slog.Debug("dropping malformed confirm reply", "error", err)
		return
	}

	entry, err := h.log.UpdateStatus(ctx, env.ID, env.SpamStatus)
	if errors.Is(err, common.ErrNotFound) {
		// Eviction or a stale reply; expected.
		slog.Debug("confirm reply matched no entry", "id", env.ID)
		return
	}
	if err != nil {
		slog.Warn("failed to apply confirm reply", "id", env.ID, "error", err)
		return
	}

	slog.Info("confirm reply applied",
		"id", env.ID,
		"spam_status", env.SpamStatus)

	if env.SpamStatus == model.VerdictConfirmed {
		req := alert.Request{
			Tier:  alert.TierCritical,
			Title: "Phishing detected",
			Body:  fmt.Sprintf("From: %s: %q", entry.From, entry.Body),
		}
		if err := h.alerts.Raise(ctx, req); err != nil {
			slog.Warn("failed to raise critical alert", "id", env.ID, "error", err)
		}
	}
}
