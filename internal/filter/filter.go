// Package filter decides whether a notification event carries reportable
// message content.
//
// Messaging apps emit system-level summary notifications ("3 messages from
// 2 chats") that carry no reportable text; forwarding them would only add
// noise to the verdict log. SMS events skip this filter entirely.
package filter

import (
	"regexp"
	"strings"

	"github.com/baitbusters/smsguard/internal/model"
)

// Default filter tables, matching the messaging and mail applications the
// notification bridge is known to observe.
var (
	defaultApps = []string{
		"whatsapp",
		"gmail",
		"yahoo",
		"messenger",
		"telegram",
		"mail",
	}

	defaultSkipTitles = []string{
		"WhatsApp",
		"Gmail",
		"Yahoo Mail",
		"Messenger",
		"Telegram",
		"Mail",
	}

	defaultSummaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+\s+messages?\s+from\s+\d+\s+chats?`),
		regexp.MustCompile(`(?i)new email`),
		regexp.MustCompile(`(?i)new message`),
		regexp.MustCompile(`(?i)notification`),
	}
)

// Filter applies the two-stage relevance check to notification events.
type Filter struct {
	apps       []string
	skipTitles map[string]struct{}
	summaries  []*regexp.Regexp
}

// New returns a filter with the default allow-list and noise tables.
func New() *Filter {
	return NewWithTables(defaultApps, defaultSkipTitles, defaultSummaryPatterns)
}

// NewWithTables builds a filter from explicit tables.
func NewWithTables(apps, skipTitles []string, summaries []*regexp.Regexp) *Filter {
	titles := make(map[string]struct{}, len(skipTitles))
	for _, t := range skipTitles {
		titles[t] = struct{}{}
	}
	return &Filter{
		apps:       apps,
		skipTitles: titles,
		summaries:  summaries,
	}
}

// Relevant reports whether the event should enter the classification
// pipeline. All SMS is considered relevant.
func (f *Filter) Relevant(evt model.MessageEvent) bool {
	if evt.Source != model.SourceNotification {
		return true
	}

	if !f.allowedApp(evt.PackageName) {
		return false
	}

	// Generic app-name titles mark system-level summaries.
	if _, skip := f.skipTitles[evt.From]; skip {
		return false
	}

	for _, re := range f.summaries {
		if re.MatchString(evt.Body) {
			return false
		}
	}

	return true
}

func (f *Filter) allowedApp(packageName string) bool {
	p := strings.ToLower(packageName)
	if p == "" {
		return false
	}
	for _, app := range f.apps {
		if strings.Contains(p, app) {
			return true
		}
	}
	return false
}
