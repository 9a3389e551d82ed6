package config

import (
	"fmt"
	"time"

	"github.com/baitbusters/smsguard/internal/common"
)

// Settings carries every pipeline tunable. Defaults mirror the deployed
// values; all of them can be overridden via config file or environment.
type Settings struct {
	// StorePath is the sqlite database holding the verdict log blob.
	StorePath string

	// Gateway is the verification endpoint address that suspected messages
	// are reported to and confirmation replies arrive from.
	Gateway string

	// Region is the phone-number region used for address normalization.
	Region string

	// Sentinel is the no-op placeholder reply the gateway may emit
	// immediately after a report is sent.
	Sentinel string

	// SuspectThreshold and ConfirmThreshold map classifier probabilities to
	// verdicts: p < SuspectThreshold is clean, p > ConfirmThreshold is
	// confirmed, anything between is suspected.
	SuspectThreshold float64
	ConfirmThreshold float64

	// LogCapacity bounds the verdict log; oldest entries are evicted first.
	LogCapacity int

	// PendingTTL expires suspected entries back to clean when no
	// confirmation ever arrives. Zero means entries stay pending forever.
	PendingTTL time.Duration

	// AlertsEnabled gates actionable alerts for suspected messages. It
	// tracks whether the user granted the alert-posting capability.
	AlertsEnabled bool
}

// Default returns the settings observed in production.
func Default() Settings {
	return Settings{
		StorePath:        "~/.local/share/smsguard/smsguard.db",
		Gateway:          "07041556156",
		Region:           "NG",
		Sentinel:         "-1",
		SuspectThreshold: 0.5,
		ConfirmThreshold: 0.8,
		LogCapacity:      200,
		PendingTTL:       0,
		AlertsEnabled:    true,
	}
}

// Validate checks cross-field consistency.
func (s Settings) Validate() error {
	if s.Gateway == "" {
		return fmt.Errorf("%w: gateway address", common.ErrMissingConfig)
	}
	if s.SuspectThreshold <= 0 || s.ConfirmThreshold >= 1 || s.SuspectThreshold >= s.ConfirmThreshold {
		return fmt.Errorf("%w: thresholds must satisfy 0 < suspect < confirm < 1", common.ErrInvalidConfig)
	}
	if s.LogCapacity <= 0 {
		return fmt.Errorf("%w: log capacity must be positive", common.ErrInvalidConfig)
	}
	return nil
}
