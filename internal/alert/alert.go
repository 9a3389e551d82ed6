// Package alert defines the contract with the external alert renderer. The
// pipeline decides which alert tier a verdict transition deserves; how the
// alert is rendered is the collaborator's business.
package alert

import (
	"context"
	"log/slog"
)

// Tier is the urgency class requested from the renderer.
type Tier int

// Alert tiers, in increasing urgency.
const (
	// TierInformational is low urgency and dismissable.
	TierInformational Tier = iota
	// TierActionable carries one embedded action that, when invoked by the
	// user, sends the attached outbound payload.
	TierActionable
	// TierCritical is intended to interrupt the user even across app and
	// lock-screen boundaries.
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierInformational:
		return "informational"
	case TierActionable:
		return "actionable"
	case TierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Action is a pre-built outbound send attached to an actionable alert.
type Action struct {
	Address string
	Payload string
}

// Request asks the renderer to raise one alert.
type Request struct {
	Tier   Tier
	Title  string
	Body   string
	Action *Action
}

// Dispatcher raises user-visible alerts.
type Dispatcher interface {
	Raise(ctx context.Context, req Request) error
}

// SlogDispatcher logs alert requests. It stands in for a platform renderer
// in headless deployments and dry runs.
type SlogDispatcher struct{}

// Raise logs the request.
func (SlogDispatcher) Raise(_ context.Context, req Request) error {
	attrs := []any{
		"tier", req.Tier.String(),
		"title", req.Title,
		"body", req.Body,
	}
	if req.Action != nil {
		attrs = append(attrs, "action_address", req.Action.Address)
	}
	slog.Info("alert requested", attrs...)
	return nil
}
