// Package normalize turns raw adapter payloads into structured message
// events and canonicalizes sender addresses.
//
// The transports feeding the pipeline (SMS broadcast, notification bridge)
// deliver attacker-controlled text with no schema guarantees, so parsing
// here is defensive: anything unparseable is dropped, never surfaced as an
// error.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/baitbusters/smsguard/internal/model"
)

// Event parses a raw event payload for the given source. The payload may be
// a JSON string or an already-decoded object. Returns ok=false when the
// payload cannot be parsed or carries none of the expected fields.
func Event(src model.Source, raw any, now time.Time) (model.MessageEvent, bool) {
	fields, ok := payloadFields(raw)
	if !ok {
		return model.MessageEvent{}, false
	}

	evt := model.MessageEvent{
		Source:    src,
		Timestamp: now.UnixMilli(),
	}
	if ts, ok := numberField(fields, "timestamp"); ok && ts > 0 {
		evt.Timestamp = int64(ts)
	}

	switch src {
	case model.SourceSMS:
		evt.From, _ = stringField(fields, "senderPhoneNumber")
		evt.Body, _ = stringField(fields, "messageBody")
		evt.PackageName = "com.sms"
	case model.SourceNotification:
		evt.PackageName, _ = stringField(fields, "packageName")
		evt.From, _ = stringField(fields, "title")
		evt.Body, _ = stringField(fields, "text")
	default:
		return model.MessageEvent{}, false
	}

	return evt, true
}

// payloadFields decodes a payload into a field map. String payloads get a
// strict JSON parse first; on failure control characters are stripped and
// the parse retried once.
func payloadFields(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case string:
		if m, ok := parseJSONObject(v); ok {
			return m, true
		}
		return parseJSONObject(stripControl(v))
	case []byte:
		return payloadFields(string(v))
	default:
		return nil, false
	}
}

func parseJSONObject(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// stripControl removes U+0000 through U+001F, which SMS payloads are known
// to smuggle into otherwise valid JSON.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}

func numberField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
