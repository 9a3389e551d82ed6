// Package source delivers raw inbound message events to the pipeline and
// owns the subscription lifecycle.
package source

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Event names delivered by adapters.
const (
	EventSMS          = "sms-received"
	EventNotification = "notification-received"
)

// RawEvent is an undecoded event as delivered by an adapter. Payload is
// either a JSON string or an already-decoded object.
type RawEvent struct {
	Name    string
	Payload any
}

// Handler consumes one raw event. Handlers are invoked sequentially per
// source, preserving arrival order.
type Handler func(ctx context.Context, evt RawEvent)

// Source pushes raw events to a handler. Subscribe blocks until the source
// is drained or the context is canceled.
type Source interface {
	Subscribe(ctx context.Context, h Handler) error
}

// Listener owns one running subscription. It replaces ambient subscription
// handles with an explicit lifecycle: Start returns a listener whose Stop
// releases the subscription exactly once.
type Listener struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start subscribes the handler to the source in a background goroutine.
func Start(ctx context.Context, src Source, h Handler) *Listener {
	ctx, cancel := context.WithCancel(ctx)
	l := &Listener{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(l.done)
		if err := src.Subscribe(ctx, h); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("event source terminated", "error", err)
		}
	}()

	return l
}

// Stop cancels the subscription and waits for it to wind down. Safe to call
// more than once; only the first call has any effect.
func (l *Listener) Stop() {
	l.once.Do(func() {
		l.cancel()
		<-l.done
	})
}

// Done is closed when the source has drained or been stopped.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}
