package aggregate

import (
	"reflect"
	"testing"

	"github.com/janekbaraniewski/gemusage/internal/pricing"
	"github.com/janekbaraniewski/gemusage/internal/telemetry"
)

func int64Ptr(v int64) *int64 { return &v }

func offlineCatalog() *pricing.Catalog {
	return pricing.NewCatalog(true)
}

func TestExtractUsage_ResolvesCostAndDate(t *testing.T) {
	events := []telemetry.UsageEvent{
		{
			Timestamp:    "2024-03-10T12:00:00Z",
			Model:        "gemini-2.5-pro",
			InputTokens:  int64Ptr(1000),
			OutputTokens: int64Ptr(200),
			CachedTokens: int64Ptr(400),
		},
	}

	records := ExtractUsage(events, offlineCatalog())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0]
	ts, err := telemetry.ParseEventTimestamp(events[0].Timestamp)
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	if want := ts.Local().Format("2006-01-02"); record.Date != want {
		t.Fatalf("date = %q, want %q", record.Date, want)
	}
	if record.InputTokens != 1000 || record.OutputTokens != 200 || record.CacheReadTokens != 400 {
		t.Fatalf("tokens = %+v", record)
	}
	if record.Cost <= 0 {
		t.Fatalf("expected positive cost, got %g", record.Cost)
	}
}

func TestExtractUsage_DropsIncompleteEvents(t *testing.T) {
	events := []telemetry.UsageEvent{
		{Timestamp: "2024-03-10T12:00:00Z"},                   // no model
		{Model: "gemini-2.5-pro"},                             // no timestamp
		{Timestamp: "not a time", Model: "gemini-2.5-pro"},    // bad timestamp
		{Timestamp: "2024-03-10T12:00:00Z", Model: "gemini-2.5-pro"},
	}

	records := ExtractUsage(events, offlineCatalog())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestExtractUsage_UnknownModelCountsTokensAtZeroCost(t *testing.T) {
	events := []telemetry.UsageEvent{
		{
			Timestamp:   "2024-03-10T12:00:00Z",
			Model:       "some-future-model",
			InputTokens: int64Ptr(5000),
		},
	}

	records := ExtractUsage(events, offlineCatalog())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].InputTokens != 5000 {
		t.Fatalf("tokens must survive an unresolved model: %+v", records[0])
	}
	if records[0].Cost != 0 {
		t.Fatalf("unresolved model should cost zero, got %g", records[0].Cost)
	}
}

func sampleRecords() []Record {
	return []Record{
		{Model: "gemini-2.5-pro", Date: "2024-01-02", InputTokens: 100, OutputTokens: 10, CacheReadTokens: 5, Cost: 0.01},
		{Model: "gemini-2.5-flash", Date: "2024-01-02", InputTokens: 200, OutputTokens: 20, Cost: 0.002},
		{Model: "gemini-2.5-pro", Date: "2024-01-05", InputTokens: 300, OutputTokens: 30, Cost: 0.03},
		{Model: "gemini-2.5-pro", Date: "2024-02-01", InputTokens: 400, OutputTokens: 40, Cost: 0.04},
	}
}

func TestRollupDaily_GroupsAndSorts(t *testing.T) {
	buckets := RollupDaily(sampleRecords(), "", "")
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	first := buckets[0]
	if first.Key != "2024-01-02" {
		t.Fatalf("first bucket key = %q", first.Key)
	}
	if first.InputTokens != 300 || first.OutputTokens != 30 || first.CacheReadTokens != 5 {
		t.Fatalf("first bucket tokens = %+v", first)
	}
	if want := []string{"gemini-2.5-flash", "gemini-2.5-pro"}; !reflect.DeepEqual(first.ModelsUsed, want) {
		t.Fatalf("models = %v, want %v", first.ModelsUsed, want)
	}
	if first.CacheCreationTokens != 0 {
		t.Fatalf("cache creation tokens must stay zero: %+v", first)
	}

	if buckets[1].Key != "2024-01-05" || buckets[2].Key != "2024-02-01" {
		t.Fatalf("buckets out of order: %v, %v", buckets[1].Key, buckets[2].Key)
	}
}

func TestRollupMonthly_UsesMonthKey(t *testing.T) {
	buckets := RollupMonthly(sampleRecords(), "", "")
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Key != "2024-01" || buckets[1].Key != "2024-02" {
		t.Fatalf("keys = %q, %q", buckets[0].Key, buckets[1].Key)
	}
	if buckets[0].InputTokens != 600 {
		t.Fatalf("january input tokens = %d", buckets[0].InputTokens)
	}
	if want := []string{"gemini-2.5-pro"}; !reflect.DeepEqual(buckets[1].ModelsUsed, want) {
		t.Fatalf("february models = %v", buckets[1].ModelsUsed)
	}
}

func TestRollupDaily_DateFilterIsInclusive(t *testing.T) {
	buckets := RollupDaily(sampleRecords(), "2024-01-02", "2024-01-05")
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(buckets), buckets)
	}
	if buckets[0].Key != "2024-01-02" || buckets[1].Key != "2024-01-05" {
		t.Fatalf("keys = %q, %q", buckets[0].Key, buckets[1].Key)
	}
}

func TestRollupDaily_FilterSelectsInteriorDays(t *testing.T) {
	var records []Record
	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"} {
		records = append(records, Record{Model: "gemini-2.5-pro", Date: date, InputTokens: 1})
	}

	buckets := RollupDaily(records, "2024-01-02", "2024-01-04")
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d: %+v", len(buckets), buckets)
	}
	for i, want := range []string{"2024-01-02", "2024-01-03", "2024-01-04"} {
		if buckets[i].Key != want {
			t.Fatalf("bucket %d key = %q, want %q", i, buckets[i].Key, want)
		}
	}
}

func TestRollupDaily_FilterAcceptsBothDateSpellings(t *testing.T) {
	hyphenated := RollupDaily(sampleRecords(), "2024-01-05", "2024-02-01")
	compact := RollupDaily(sampleRecords(), "20240105", "20240201")
	if !reflect.DeepEqual(hyphenated, compact) {
		t.Fatalf("filter spellings disagree: %+v vs %+v", hyphenated, compact)
	}
}

func TestRollupDaily_OpenEndedFilters(t *testing.T) {
	sinceOnly := RollupDaily(sampleRecords(), "2024-01-05", "")
	if len(sinceOnly) != 2 {
		t.Fatalf("since-only: expected 2 buckets, got %d", len(sinceOnly))
	}
	untilOnly := RollupDaily(sampleRecords(), "", "2024-01-02")
	if len(untilOnly) != 1 {
		t.Fatalf("until-only: expected 1 bucket, got %d", len(untilOnly))
	}
}

func TestRollup_EmptyInput(t *testing.T) {
	if buckets := RollupDaily(nil, "", ""); len(buckets) != 0 {
		t.Fatalf("expected no buckets, got %d", len(buckets))
	}
	if buckets := RollupMonthly(nil, "2024-01-01", "2024-12-31"); len(buckets) != 0 {
		t.Fatalf("expected no buckets, got %d", len(buckets))
	}
}

func TestSum_MatchesAcrossGranularities(t *testing.T) {
	records := sampleRecords()
	daily := Sum(RollupDaily(records, "", ""))
	monthly := Sum(RollupMonthly(records, "", ""))
	if daily != monthly {
		t.Fatalf("daily and monthly totals disagree: %+v vs %+v", daily, monthly)
	}
	if daily.InputTokens != 1000 || daily.OutputTokens != 100 || daily.CacheReadTokens != 5 {
		t.Fatalf("totals = %+v", daily)
	}
}

func TestRollup_IsIdempotent(t *testing.T) {
	records := sampleRecords()
	first := RollupDaily(records, "", "")
	second := RollupDaily(records, "", "")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated rollup changed output")
	}
}
