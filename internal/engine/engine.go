// Package engine implements the message ingestion, classification and
// verdict-synchronization pipeline: normalize, route, filter, deduplicate,
// classify, log, alert.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/baitbusters/smsguard/internal/alert"
	"github.com/baitbusters/smsguard/internal/classify"
	"github.com/baitbusters/smsguard/internal/common"
	"github.com/baitbusters/smsguard/internal/config"
	"github.com/baitbusters/smsguard/internal/filter"
	"github.com/baitbusters/smsguard/internal/model"
	"github.com/baitbusters/smsguard/internal/normalize"
	"github.com/baitbusters/smsguard/internal/protocol"
	"github.com/baitbusters/smsguard/internal/source"
	"github.com/baitbusters/smsguard/internal/storage"
)

// Engine orchestrates the pipeline for one device. Events run to completion
// one at a time per source; the verdict log serializes its own mutation.
type Engine struct {
	log        *storage.VerdictLog
	classifier classify.Classifier
	alerts     alert.Dispatcher
	confirm    *protocol.ConfirmHandler
	filter     *filter.Filter
	settings   config.Settings

	// gateway is the pre-normalized verification endpoint address used for
	// provenance routing.
	gateway string

	// recent guards against duplicate delivery of the same underlying
	// event within this process lifetime. It complements, not replaces,
	// the per-body dedupe the log enforces on insert.
	mu     sync.Mutex
	recent map[string]struct{}
}

// New creates a pipeline engine over the given collaborators.
func New(log *storage.VerdictLog, classifier classify.Classifier, alerts alert.Dispatcher, settings config.Settings) *Engine {
	return &Engine{
		log:        log,
		classifier: classifier,
		alerts:     alerts,
		confirm:    protocol.NewConfirmHandler(log, alerts, settings.Sentinel),
		filter:     filter.New(),
		settings:   settings,
		gateway:    normalize.Address(settings.Gateway, settings.Region),
		recent:     make(map[string]struct{}),
	}
}

// HandleEvent adapts the engine to the source.Handler contract. Pipeline
// errors are logged here; malformed input never crashes the loop.
func (e *Engine) HandleEvent(ctx context.Context, evt source.RawEvent) {
	var src model.Source
	switch evt.Name {
	case source.EventSMS:
		src = model.SourceSMS
	case source.EventNotification:
		src = model.SourceNotification
	default:
		slog.Debug("dropping event with unknown name", "event", evt.Name)
		return
	}

	if err := e.Process(ctx, src, evt.Payload); err != nil {
		slog.Error("event processing failed", "source", src, "error", err)
	}
}

// Process runs one raw event through the pipeline. The only error it
// returns is classifier unavailability; every malformed-input condition is
// a silent drop, because the transport is inherently noisy and the text is
// attacker-controlled.
func (e *Engine) Process(ctx context.Context, src model.Source, payload any) error {
	evt, ok := normalize.Event(src, payload, time.Now())
	if !ok {
		slog.Debug("dropping unparseable event", "source", src)
		return nil
	}

	// Replies from the verification endpoint are confirm-protocol traffic,
	// never classification input.
	if src == model.SourceSMS && e.gateway != "" &&
		normalize.Address(evt.From, e.settings.Region) == e.gateway {
		e.confirm.Handle(ctx, evt.Body)
		return nil
	}

	if !e.filter.Relevant(evt) {
		slog.Debug("dropping irrelevant notification",
			"package", evt.PackageName,
			"title", evt.From)
		return nil
	}

	if strings.TrimSpace(evt.Body) == "" {
		return nil
	}

	if e.seenRecently(evt.Body) {
		slog.Debug("dropping duplicate delivery", "source", src)
		return nil
	}

	p, err := e.classifier.Classify(ctx, evt.Body)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return nil
		}
		// The message is dropped for this attempt; the next event
		// re-attempts the model load.
		return fmt.Errorf("classify message: %w", err)
	}

	status := e.verdict(p)
	slog.Debug("message classified",
		"source", src,
		"probability", p,
		"verdict", status)

	if status == model.VerdictClean {
		return nil
	}

	entry := model.LogEntry{
		ID:          model.NewID(time.Now()),
		Source:      e.sourceLabel(evt),
		From:        evt.From,
		PackageName: evt.PackageName,
		Body:        evt.Body,
		SpamStatus:  status,
		ReceivedAt:  evt.Timestamp,
	}

	// Insertion, including the persistence attempt, completes before any
	// alert or report is issued so a fast confirm reply can always resolve
	// the entry.
	if err := e.log.Append(ctx, entry); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) || errors.Is(err, common.ErrEmptyBody) {
			return nil
		}
		return fmt.Errorf("append log entry: %w", err)
	}

	slog.Info("message logged",
		"id", entry.ID,
		"source", entry.Source,
		"verdict", status)

	switch status {
	case model.VerdictSuspected:
		e.raiseActionable(ctx, entry)
	case model.VerdictConfirmed:
		e.raiseCritical(ctx, entry)
	}

	return nil
}

// verdict maps a classifier probability to a verdict using the configured
// thresholds. Mid-confidence results go through human-in-the-loop
// confirmation rather than alerting outright.
func (e *Engine) verdict(p float64) float64 {
	switch {
	case p > e.settings.ConfirmThreshold:
		return model.VerdictConfirmed
	case p < e.settings.SuspectThreshold:
		return model.VerdictClean
	default:
		return model.VerdictSuspected
	}
}

func (e *Engine) sourceLabel(evt model.MessageEvent) string {
	if evt.Source == model.SourceSMS {
		return string(model.SourceSMS)
	}
	return model.AppLabel(evt.PackageName)
}

func (e *Engine) seenRecently(body string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, seen := e.recent[body]; seen {
		return true
	}
	e.recent[body] = struct{}{}
	return false
}

// raiseActionable requests an actionable alert carrying the pre-built
// report envelope, gated on the user having granted the alert capability.
func (e *Engine) raiseActionable(ctx context.Context, entry model.LogEntry) {
	if !e.settings.AlertsEnabled {
		return
	}

	outbound, err := protocol.BuildAction(entry, e.settings.Gateway)
	if err != nil {
		slog.Warn("failed to build report envelope", "id", entry.ID, "error", err)
		return
	}

	req := alert.Request{
		Tier:  alert.TierActionable,
		Title: fmt.Sprintf("From: %s", entry.From),
		Body:  "Potential phishing message",
		Action: &alert.Action{
			Address: outbound.Address,
			Payload: outbound.Payload,
		},
	}
	if err := e.alerts.Raise(ctx, req); err != nil {
		slog.Warn("failed to raise actionable alert", "id", entry.ID, "error", err)
	}
}

func (e *Engine) raiseCritical(ctx context.Context, entry model.LogEntry) {
	req := alert.Request{
		Tier:  alert.TierCritical,
		Title: "Phishing detected",
		Body:  fmt.Sprintf("From: %s: %q", entry.From, entry.Body),
	}
	if err := e.alerts.Raise(ctx, req); err != nil {
		slog.Warn("failed to raise critical alert", "id", entry.ID, "error", err)
	}
}
