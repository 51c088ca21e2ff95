package telemetry

import (
	"strings"
	"testing"
)

const sampleResponse = `{
  "body": "API response from gemini-2.5-pro",
  "attributes": {
    "event.name": "gemini_cli.api_response",
    "event.timestamp": "2025-01-15T10:30:00.123Z",
    "model": "gemini-2.5-pro",
    "status_code": 200,
    "input_token_count": 1200,
    "output_token_count": 345,
    "cached_content_token_count": 800,
    "thoughts_token_count": 50,
    "tool_token_count": 7
  }
}`

const sampleConfigEvent = `{
  "attributes": {
    "event.name": "gemini_cli.config",
    "event.timestamp": "2025-01-15T10:29:58Z",
    "model": "gemini-2.5-pro"
  }
}`

func TestParse_SingleResponseRecord(t *testing.T) {
	events, stats := Parse(sampleResponse)
	if stats.Total() != 0 {
		t.Fatalf("unexpected drops: %+v", stats)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.Model != "gemini-2.5-pro" {
		t.Fatalf("model = %q", event.Model)
	}
	if event.Timestamp != "2025-01-15T10:30:00.123Z" {
		t.Fatalf("timestamp = %q", event.Timestamp)
	}
	if got := TokenOrZero(event.InputTokens); got != 1200 {
		t.Fatalf("input tokens = %d", got)
	}
	if got := TokenOrZero(event.OutputTokens); got != 345 {
		t.Fatalf("output tokens = %d", got)
	}
	if got := TokenOrZero(event.CachedTokens); got != 800 {
		t.Fatalf("cached tokens = %d", got)
	}
	if got := TokenOrZero(event.ThoughtsTokens); got != 50 {
		t.Fatalf("thoughts tokens = %d", got)
	}
	if got := TokenOrZero(event.ToolTokens); got != 7 {
		t.Fatalf("tool tokens = %d", got)
	}
}

func TestParse_RecoversConcatenatedRecords(t *testing.T) {
	raw := sampleResponse + "\n" + sampleResponse

	events, stats := Parse(raw)
	if stats.Total() != 0 {
		t.Fatalf("unexpected drops: %+v", stats)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestParse_MalformedMiddleRecordIsIsolated(t *testing.T) {
	garbage := `{
  "attributes": {
    "event.name": "gemini_cli.api_response",
    "truncated
}`
	raw := sampleResponse + "\n" + garbage + "\n" + sampleResponse

	events, stats := Parse(raw)
	if len(events) != 2 {
		t.Fatalf("expected 2 events around the bad record, got %d", len(events))
	}
	if stats.InvalidJSON != 1 {
		t.Fatalf("expected 1 invalid-json drop, got %+v", stats)
	}
}

func TestParse_TrailingDataAfterRecordIsDropped(t *testing.T) {
	for _, raw := range []string{
		sampleResponse + "garbage after the object",
		sampleResponse + " " + `{"attributes": {"event.name": "gemini_cli.api_response"}}`,
	} {
		events, stats := Parse(raw)
		if len(events) != 0 {
			t.Fatalf("candidate with trailing data minted %d events: %q", len(events), raw)
		}
		if stats.InvalidJSON != 1 {
			t.Fatalf("expected 1 invalid-json drop, got %+v", stats)
		}
	}
}

func TestParse_FiltersNonResponseEvents(t *testing.T) {
	raw := sampleConfigEvent + "\n" + sampleResponse

	events, stats := Parse(raw)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if stats.IgnoredEvent != 1 {
		t.Fatalf("expected 1 ignored drop, got %+v", stats)
	}
}

func TestParse_RecordWithoutAttributesIsDropped(t *testing.T) {
	events, stats := Parse(`{"body": "scope info", "resource": {}}`)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if stats.NoAttributes != 1 {
		t.Fatalf("expected 1 no-attributes drop, got %+v", stats)
	}
}

func TestParse_MissingTimestampInvalidatesRecord(t *testing.T) {
	raw := `{
  "attributes": {
    "event.name": "gemini_cli.api_response",
    "model": "gemini-2.5-flash",
    "input_token_count": 10
  }
}`
	events, stats := Parse(raw)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if stats.InvalidRecord != 1 {
		t.Fatalf("expected 1 invalid-record drop, got %+v", stats)
	}
}

func TestParse_NegativeTokenCountInvalidatesRecord(t *testing.T) {
	raw := `{
  "attributes": {
    "event.name": "gemini_cli.api_response",
    "event.timestamp": "2025-01-15T10:30:00Z",
    "model": "gemini-2.5-flash",
    "input_token_count": -5
  }
}`
	events, stats := Parse(raw)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if stats.InvalidRecord != 1 {
		t.Fatalf("expected 1 invalid-record drop, got %+v", stats)
	}
}

func TestParse_NegativeTotalCostInvalidatesRecord(t *testing.T) {
	raw := `{
  "attributes": {
    "event.name": "gemini_cli.api_response",
    "event.timestamp": "2025-01-15T10:30:00Z",
    "model": "gemini-2.5-flash",
    "input_token_count": 10,
    "total_cost": -0.01
  }
}`
	events, stats := Parse(raw)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if stats.InvalidRecord != 1 {
		t.Fatalf("expected 1 invalid-record drop, got %+v", stats)
	}
}

func TestParse_ReportedTotalCostIsAcceptedNotCarried(t *testing.T) {
	raw := `{
  "attributes": {
    "event.name": "gemini_cli.api_response",
    "event.timestamp": "2025-01-15T10:30:00Z",
    "model": "gemini-2.5-flash",
    "input_token_count": 10,
    "total_cost": 0.0042
  }
}`
	events, stats := Parse(raw)
	if stats.Total() != 0 {
		t.Fatalf("unexpected drops: %+v", stats)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

func TestParse_AbsentTokenFieldStaysNil(t *testing.T) {
	raw := `{
  "attributes": {
    "event.name": "gemini_cli.api_response",
    "event.timestamp": "2025-01-15T10:30:00Z",
    "model": "gemini-2.5-flash",
    "input_token_count": 0
  }
}`
	events, stats := Parse(raw)
	if stats.Total() != 0 {
		t.Fatalf("unexpected drops: %+v", stats)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.InputTokens == nil || *event.InputTokens != 0 {
		t.Fatalf("explicit zero should survive as zero, got %v", event.InputTokens)
	}
	if event.OutputTokens != nil {
		t.Fatalf("absent field should stay nil, got %d", *event.OutputTokens)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   \n\t  "} {
		events, stats := Parse(raw)
		if len(events) != 0 || stats.Total() != 0 {
			t.Fatalf("empty input %q produced events=%d stats=%+v", raw, len(events), stats)
		}
	}
}

func TestSplitConcatenated_ReattachesBraces(t *testing.T) {
	pieces := SplitConcatenated("{\"a\": 1}\n{\"b\": 2}\n{\"c\": 3}")
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d: %q", len(pieces), pieces)
	}
	for i, piece := range pieces {
		if !strings.HasPrefix(piece, "{") || !strings.HasSuffix(piece, "}") {
			t.Fatalf("piece %d lost a brace: %q", i, piece)
		}
	}
}

func TestParseEventTimestamp_AcceptedLayouts(t *testing.T) {
	cases := []string{
		"2025-01-15T10:30:00.123456789Z",
		"2025-01-15T10:30:00Z",
		"2025-01-15T10:30:00+02:00",
		"2025-01-15 10:30:00",
	}
	for _, value := range cases {
		if _, err := ParseEventTimestamp(value); err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
	}

	if _, err := ParseEventTimestamp("15/01/2025"); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}
