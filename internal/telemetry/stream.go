package telemetry

// StreamKind classifies a record seen on the live telemetry stream.
type StreamKind int

const (
	// StreamIgnored is a well-formed record of no interest (config, prompt,
	// tool-call events).
	StreamIgnored StreamKind = iota
	// StreamUsage is a full per-call API response record.
	StreamUsage
	// StreamTokens is an incremental token-usage metric record.
	StreamTokens
)

// TokenDelta is one token-usage metric sample: a count tagged with the token
// class it belongs to (input, output, cache, thought, tool).
type TokenDelta struct {
	Type  string
	Count int64
}

// StreamRecord is the typed projection of one live-stream record.
type StreamRecord struct {
	Kind   StreamKind
	Usage  UsageEvent
	Tokens TokenDelta
}

// ParseStreamRecord parses a single candidate from the live stream. ok is
// false only when the candidate is not a well-formed record; the caller may
// then carry it forward as a truncated write in progress.
func ParseStreamRecord(candidate string) (StreamRecord, bool) {
	attrs, wellFormed := decodeAttributes(candidate)
	if !wellFormed {
		return StreamRecord{}, false
	}
	if attrs == nil {
		return StreamRecord{Kind: StreamIgnored}, true
	}

	switch attrString(attrs, "event.name") {
	case EventAPIResponse:
		event, outcome := projectUsageEvent(attrs)
		if outcome != outcomeOK {
			return StreamRecord{Kind: StreamIgnored}, true
		}
		return StreamRecord{Kind: StreamUsage, Usage: event}, true

	case EventTokenUsage:
		delta, ok := projectTokenDelta(attrs)
		if !ok {
			return StreamRecord{Kind: StreamIgnored}, true
		}
		return StreamRecord{Kind: StreamTokens, Tokens: delta}, true

	default:
		return StreamRecord{Kind: StreamIgnored}, true
	}
}

func projectTokenDelta(attrs map[string]any) (TokenDelta, bool) {
	tokenType := attrString(attrs, "type")
	if tokenType == "" {
		return TokenDelta{}, false
	}
	count, present, valid := attrTokenCount(attrs, "count")
	if !present || !valid {
		return TokenDelta{}, false
	}
	return TokenDelta{Type: tokenType, Count: count}, true
}
