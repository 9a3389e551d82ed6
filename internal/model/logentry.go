package model

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Verdict values for a logged message. Suspected entries await confirmation
// from the verification endpoint; confirmed entries never regress.
const (
	VerdictClean     = 0.0
	VerdictSuspected = 0.5
	VerdictConfirmed = 1.0
)

// LogEntry is the persisted record of a classified message. The json tags
// are the storage blob format and must stay stable across releases.
type LogEntry struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	From        string  `json:"from,omitempty"`
	PackageName string  `json:"packageName,omitempty"`
	Body        string  `json:"body"`
	SpamStatus  float64 `json:"spamStatus"`
	ReceivedAt  int64   `json:"receivedAt"`
}

var (
	idMu   sync.Mutex
	idLast int64
	idSeq  int
)

// NewID returns a correlation id that sorts by arrival time and stays unique
// for same-millisecond arrivals within a process.
func NewID(now time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()

	ms := now.UnixMilli()
	if ms == idLast {
		idSeq++
	} else {
		idLast = ms
		idSeq = 0
	}

	if idSeq == 0 {
		return strconv.FormatInt(ms, 10)
	}
	return fmt.Sprintf("%d-%d", ms, idSeq)
}

// AppLabel derives a human-readable source label from a notification's
// package name. Unrecognized packages fall through as-is.
func AppLabel(packageName string) string {
	if packageName == "" {
		return "Unknown"
	}

	p := strings.ToLower(packageName)
	switch {
	case strings.Contains(p, "whatsapp"):
		return "WhatsApp"
	case strings.Contains(p, "gmail"), strings.Contains(p, "google"):
		return "Gmail"
	case strings.Contains(p, "yahoo"):
		return "Yahoo Mail"
	case strings.Contains(p, "messenger"), strings.Contains(p, "facebook"):
		return "Messenger"
	case strings.Contains(p, "telegram"):
		return "Telegram"
	case strings.Contains(p, "mail"), strings.Contains(p, "outlook"):
		return "Mail"
	}
	return packageName
}
