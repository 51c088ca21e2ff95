package telemetry

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"
)

// recordBoundary is where one pretty-printed record ends and the next begins.
// The Gemini CLI writes records indented, so a closing brace at column zero
// followed by an opening brace is a reliable object boundary.
const recordBoundary = "}\n{"

// SplitConcatenated recovers individual JSON object candidates from raw file
// content. Each piece gets its stripped brace re-attached; the caller still has
// to strict-parse every candidate.
func SplitConcatenated(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	pieces := strings.Split(trimmed, recordBoundary)
	if len(pieces) == 1 {
		return pieces
	}

	out := make([]string, len(pieces))
	for i, piece := range pieces {
		if i > 0 {
			piece = "{" + piece
		}
		if i < len(pieces)-1 {
			piece = piece + "}"
		}
		out[i] = piece
	}
	return out
}

// Parse converts raw telemetry content into usage events. It never returns an
// error: malformed candidates, non-response events, and schema failures are
// counted in DropStats and skipped.
func Parse(raw string) ([]UsageEvent, DropStats) {
	var (
		events []UsageEvent
		stats  DropStats
	)

	for _, candidate := range SplitConcatenated(raw) {
		event, outcome := parseCandidate(candidate)
		switch outcome {
		case outcomeOK:
			events = append(events, event)
		case outcomeInvalidJSON:
			stats.InvalidJSON++
		case outcomeNoAttributes:
			stats.NoAttributes++
		case outcomeIgnoredEvent:
			stats.IgnoredEvent++
		case outcomeInvalidRecord:
			stats.InvalidRecord++
		}
	}

	return events, stats
}

type parseOutcome int

const (
	outcomeOK parseOutcome = iota
	outcomeInvalidJSON
	outcomeNoAttributes
	outcomeIgnoredEvent
	outcomeInvalidRecord
)

func parseCandidate(candidate string) (UsageEvent, parseOutcome) {
	attrs, ok := decodeAttributes(candidate)
	if !ok {
		return UsageEvent{}, outcomeInvalidJSON
	}
	if attrs == nil {
		return UsageEvent{}, outcomeNoAttributes
	}

	if attrString(attrs, "event.name") != EventAPIResponse {
		return UsageEvent{}, outcomeIgnoredEvent
	}

	return projectUsageEvent(attrs)
}

// decodeAttributes strict-parses one candidate and pulls out its attributes
// map. Returns (nil, true) when the JSON is fine but attributes are missing.
func decodeAttributes(candidate string) (map[string]any, bool) {
	decoder := json.NewDecoder(strings.NewReader(candidate))
	decoder.UseNumber()

	var root map[string]any
	if err := decoder.Decode(&root); err != nil {
		return nil, false
	}
	// Decode stops after the first value; a candidate with trailing data is
	// not a single well-formed object.
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}

	attrs, ok := root["attributes"].(map[string]any)
	if !ok {
		return nil, true
	}
	return attrs, true
}

// projectUsageEvent maps the loose attribute tree into a typed event. The
// loose representation must not leak past this point.
func projectUsageEvent(attrs map[string]any) (UsageEvent, parseOutcome) {
	timestamp := attrString(attrs, "event.timestamp")
	if timestamp == "" {
		return UsageEvent{}, outcomeInvalidRecord
	}
	if _, err := ParseEventTimestamp(timestamp); err != nil {
		return UsageEvent{}, outcomeInvalidRecord
	}

	event := UsageEvent{
		Timestamp: timestamp,
		Model:     attrString(attrs, "model"),
	}

	fields := []struct {
		key  string
		dest **int64
	}{
		{"input_token_count", &event.InputTokens},
		{"output_token_count", &event.OutputTokens},
		{"cached_content_token_count", &event.CachedTokens},
		{"thoughts_token_count", &event.ThoughtsTokens},
		{"tool_token_count", &event.ToolTokens},
	}
	for _, field := range fields {
		value, present, valid := attrTokenCount(attrs, field.key)
		if !valid {
			return UsageEvent{}, outcomeInvalidRecord
		}
		if present {
			*field.dest = &value
		}
	}

	// total_cost is not carried on the event (cost is recomputed from the
	// pricing catalog) but a reported negative value still fails validation.
	if !validCostAttr(attrs, "total_cost") {
		return UsageEvent{}, outcomeInvalidRecord
	}

	return event, outcomeOK
}

// validCostAttr accepts an absent cost attribute or a present non-negative
// number.
func validCostAttr(attrs map[string]any, key string) bool {
	raw, ok := attrs[key]
	if !ok || raw == nil {
		return true
	}
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		return err == nil && f >= 0
	case float64:
		return v >= 0
	default:
		return false
	}
}

// ParseEventTimestamp parses the timestamp formats the Gemini CLI emits.
func ParseEventTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	var lastErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func attrString(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}

// attrTokenCount reads an optional non-negative integer attribute. A present
// but negative or non-integer value invalidates the whole record.
func attrTokenCount(attrs map[string]any, key string) (value int64, present bool, valid bool) {
	raw, ok := attrs[key]
	if !ok || raw == nil {
		return 0, false, true
	}

	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < 0 {
			return 0, true, false
		}
		return n, true, true
	case float64:
		n := int64(v)
		if v < 0 || float64(n) != v {
			return 0, true, false
		}
		return n, true, true
	default:
		return 0, true, false
	}
}
