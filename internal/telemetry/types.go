// Package telemetry turns the raw log files written by an instrumented Gemini
// CLI run into typed usage events. The files hold concatenated, pretty-printed
// JSON records with no separator, so recovery is heuristic and every failure
// degrades to a dropped record, never an error.
package telemetry

// Event names emitted by the Gemini CLI telemetry stream. Only API responses
// carry per-call token accounting; the rest (config, prompts, tool calls) are
// filtered out during parsing.
const (
	EventAPIResponse = "gemini_cli.api_response"
	EventTokenUsage  = "gemini_cli.token.usage"
)

// UsageEvent is one observed API call's accounting data. Token fields are
// pointers so a field absent from the record stays distinguishable from one
// reported as zero.
type UsageEvent struct {
	Timestamp string
	Model     string

	InputTokens    *int64
	OutputTokens   *int64
	CachedTokens   *int64
	ThoughtsTokens *int64
	ToolTokens     *int64
}

// TokenOrZero dereferences an optional token count.
func TokenOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// DropStats counts records discarded during a parse, by reason. It is a side
// output so callers and tests can observe data quality without log capture.
type DropStats struct {
	InvalidJSON   int // candidate was not a well-formed JSON object
	NoAttributes  int // record lacked an attributes map
	IgnoredEvent  int // event.name was not an API response
	InvalidRecord int // schema validation failed (timestamp, token counts)
}

// Total returns the number of dropped records across all reasons.
func (s DropStats) Total() int {
	return s.InvalidJSON + s.NoAttributes + s.IgnoredEvent + s.InvalidRecord
}

func (s *DropStats) add(other DropStats) {
	s.InvalidJSON += other.InvalidJSON
	s.NoAttributes += other.NoAttributes
	s.IgnoredEvent += other.IgnoredEvent
	s.InvalidRecord += other.InvalidRecord
}
