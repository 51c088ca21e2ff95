package render

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/janekbaraniewski/gemusage/internal/aggregate"
)

type jsonBucket struct {
	Key                 string   `json:"key"`
	InputTokens         int64    `json:"input_tokens"`
	OutputTokens        int64    `json:"output_tokens"`
	CacheCreationTokens int64    `json:"cache_creation_tokens"`
	CacheReadTokens     int64    `json:"cache_read_tokens"`
	TotalCost           float64  `json:"total_cost"`
	ModelsUsed          []string `json:"models_used,omitempty"`
}

type jsonReport struct {
	Buckets []jsonBucket `json:"buckets"`
	Total   jsonBucket   `json:"total"`
}

// JSON writes the bucket sequence and its totals as indented JSON.
func JSON(w io.Writer, buckets []aggregate.Bucket) error {
	report := jsonReport{Buckets: make([]jsonBucket, 0, len(buckets))}

	modelSet := make(map[string]bool)
	for _, bucket := range buckets {
		report.Buckets = append(report.Buckets, jsonBucket{
			Key:                 bucket.Key,
			InputTokens:         bucket.InputTokens,
			OutputTokens:        bucket.OutputTokens,
			CacheCreationTokens: bucket.CacheCreationTokens,
			CacheReadTokens:     bucket.CacheReadTokens,
			TotalCost:           bucket.TotalCost,
			ModelsUsed:          bucket.ModelsUsed,
		})
		for _, model := range bucket.ModelsUsed {
			modelSet[model] = true
		}
	}

	totals := aggregate.Sum(buckets)
	models := make([]string, 0, len(modelSet))
	for model := range modelSet {
		models = append(models, model)
	}
	sort.Strings(models)

	report.Total = jsonBucket{
		Key:                 "total",
		InputTokens:         totals.InputTokens,
		OutputTokens:        totals.OutputTokens,
		CacheCreationTokens: totals.CacheCreationTokens,
		CacheReadTokens:     totals.CacheReadTokens,
		TotalCost:           totals.TotalCost,
		ModelsUsed:          models,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
