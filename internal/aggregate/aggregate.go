// Package aggregate rolls typed usage events up into day and month buckets
// with per-event cost attribution.
package aggregate

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/gemusage/internal/pricing"
	"github.com/janekbaraniewski/gemusage/internal/telemetry"
)

// Record is one event's contribution after cost resolution, keyed by the
// local calendar date of its timestamp.
type Record struct {
	Model string
	Date  string // YYYY-MM-DD

	InputTokens     int64
	OutputTokens    int64
	CacheReadTokens int64
	Cost            float64
}

// Bucket is an aggregate over all records sharing a day or month key.
// ModelsUsed holds each distinct model once, sorted.
//
// CacheCreationTokens is always zero: no Gemini telemetry field feeds it.
// It is kept in the shape so downstream consumers see a stable schema.
type Bucket struct {
	Key string // YYYY-MM-DD or YYYY-MM

	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	TotalCost           float64
	ModelsUsed          []string
}

// Totals is a field-wise sum over buckets. The zero value is the identity.
type Totals struct {
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	TotalCost           float64
}

// ExtractUsage resolves each event's cost and local date. Events missing a
// model or timestamp are dropped; an unresolvable model degrades to zero cost
// with its tokens still counted.
func ExtractUsage(events []telemetry.UsageEvent, catalog *pricing.Catalog) []Record {
	records := make([]Record, 0, len(events))
	for _, event := range events {
		if strings.TrimSpace(event.Model) == "" || strings.TrimSpace(event.Timestamp) == "" {
			continue
		}
		ts, err := telemetry.ParseEventTimestamp(event.Timestamp)
		if err != nil {
			continue
		}

		record := Record{
			Model:           event.Model,
			Date:            ts.Local().Format("2006-01-02"),
			InputTokens:     telemetry.TokenOrZero(event.InputTokens),
			OutputTokens:    telemetry.TokenOrZero(event.OutputTokens),
			CacheReadTokens: telemetry.TokenOrZero(event.CachedTokens),
		}

		breakdown := catalog.ComputeCost(
			event.Model,
			record.InputTokens,
			record.OutputTokens,
			record.CacheReadTokens,
			telemetry.TokenOrZero(event.ThoughtsTokens),
			telemetry.TokenOrZero(event.ToolTokens),
		)
		if breakdown != nil {
			record.Cost = breakdown.TotalCost
		}

		records = append(records, record)
	}
	return records
}

// RollupDaily groups records by calendar day, ascending, with an optional
// inclusive date-range filter. Since/until accept YYYYMMDD or YYYY-MM-DD.
func RollupDaily(records []Record, since, until string) []Bucket {
	return filterBuckets(rollup(records, func(r Record) string { return r.Date }), since, until)
}

// RollupMonthly groups records by calendar month (the first 7 characters of
// the date), with the same ordering and filtering discipline as RollupDaily.
func RollupMonthly(records []Record, since, until string) []Bucket {
	return filterBuckets(rollup(records, monthKey), since, until)
}

func monthKey(r Record) string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}

func rollup(records []Record, keyFn func(Record) string) []Bucket {
	grouped := lo.GroupBy(records, keyFn)

	keys := lo.Keys(grouped)
	sort.Strings(keys)

	buckets := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		group := grouped[key]
		bucket := Bucket{Key: key}
		for _, record := range group {
			bucket.InputTokens += record.InputTokens
			bucket.OutputTokens += record.OutputTokens
			bucket.CacheReadTokens += record.CacheReadTokens
			bucket.TotalCost += record.Cost
		}
		models := lo.Uniq(lo.Map(group, func(r Record, _ int) string { return r.Model }))
		sort.Strings(models)
		bucket.ModelsUsed = models
		buckets = append(buckets, bucket)
	}
	return buckets
}

func filterBuckets(buckets []Bucket, since, until string) []Bucket {
	since = normalizeDateFilter(since)
	until = normalizeDateFilter(until)
	if since == "" && until == "" {
		return buckets
	}

	out := make([]Bucket, 0, len(buckets))
	for _, bucket := range buckets {
		key := normalizeDateFilter(bucket.Key)
		if since != "" && key < since {
			continue
		}
		if until != "" && key > until {
			continue
		}
		out = append(out, bucket)
	}
	return out
}

// normalizeDateFilter strips hyphens so YYYYMMDD and YYYY-MM-DD inputs
// compare identically.
func normalizeDateFilter(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), "-", "")
}

// Sum totals an arbitrary bucket sequence, order-independent.
func Sum(buckets []Bucket) Totals {
	var totals Totals
	for _, bucket := range buckets {
		totals.InputTokens += bucket.InputTokens
		totals.OutputTokens += bucket.OutputTokens
		totals.CacheCreationTokens += bucket.CacheCreationTokens
		totals.CacheReadTokens += bucket.CacheReadTokens
		totals.TotalCost += bucket.TotalCost
	}
	return totals
}
