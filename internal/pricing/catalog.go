// Package pricing resolves free-text model names to per-token cost
// coefficients and computes cost breakdowns for usage events.
package pricing

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultFetchURL is the LiteLLM community pricing document.
const DefaultFetchURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

const defaultFetchTimeout = 10 * time.Second

// PricingRecord holds the cost coefficients for one model identifier.
// CacheReadCostPerToken is optional; cost math substitutes a fraction of the
// input rate when it is absent.
type PricingRecord struct {
	InputCostPerToken     float64
	OutputCostPerToken    float64
	CacheReadCostPerToken *float64
	MaxInputTokens        int64
	MaxTokens             int64
}

// Catalog owns the model→pricing mapping. It is populated lazily on first
// lookup, exactly once per Catalog: concurrent callers block on the single
// fetch and observe the same result, including a remembered failure.
//
// The remote document's key order is preserved because the substring fallback
// in Resolve is defined as "first match in iteration order".
type Catalog struct {
	// Offline skips the network and seeds from the bundled snapshot.
	Offline bool
	// FetchURL overrides the pricing document URL (tests).
	FetchURL string
	// HTTPClient overrides the fetch transport (tests).
	HTTPClient *http.Client

	loadOnce sync.Once
	keys     []string
	records  map[string]PricingRecord
}

// NewCatalog returns an unloaded catalog.
func NewCatalog(offline bool) *Catalog {
	return &Catalog{Offline: offline}
}

func (c *Catalog) ensure() {
	c.loadOnce.Do(c.load)
}

func (c *Catalog) load() {
	c.records = make(map[string]PricingRecord)

	if c.Offline {
		c.seed(offlineSnapshot)
		return
	}

	keys, records, err := fetchRemoteCatalog(c.fetchURL(), c.httpClient())
	if err != nil {
		// Resolution falls through to the experimental table for the rest of
		// the process; the network is not retried.
		log.Printf("pricing: catalog fetch failed: %v", err)
		return
	}
	c.keys = keys
	c.records = records
}

func (c *Catalog) seed(entries []catalogEntry) {
	for _, entry := range entries {
		if _, ok := c.records[entry.Name]; ok {
			continue
		}
		c.keys = append(c.keys, entry.Name)
		c.records[entry.Name] = entry.Record
	}
}

func (c *Catalog) fetchURL() string {
	if strings.TrimSpace(c.FetchURL) != "" {
		return c.FetchURL
	}
	return DefaultFetchURL
}

func (c *Catalog) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultFetchTimeout}
}

func (c *Catalog) lookup(name string) (PricingRecord, bool) {
	record, ok := c.records[name]
	return record, ok
}

type catalogEntry struct {
	Name   string
	Record PricingRecord
}

// remoteEntry mirrors one value object in the LiteLLM pricing document.
type remoteEntry struct {
	InputCostPerToken  *float64 `json:"input_cost_per_token"`
	OutputCostPerToken *float64 `json:"output_cost_per_token"`
	CacheReadCost      *float64 `json:"cache_read_input_token_cost"`
	MaxInputTokens     int64    `json:"max_input_tokens"`
	MaxTokens          int64    `json:"max_tokens"`
}

// fetchRemoteCatalog downloads and decodes the pricing document, preserving
// its key order. Entries with neither cost field are excluded.
func fetchRemoteCatalog(url string, client *http.Client) ([]string, map[string]PricingRecord, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch pricing catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch pricing catalog: HTTP %d", resp.StatusCode)
	}

	return decodeCatalog(resp.Body)
}

// decodeCatalog walks the top-level object token by token so insertion order
// survives; a plain map unmarshal would randomize it.
func decodeCatalog(r io.Reader) ([]string, map[string]PricingRecord, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decode pricing catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("decode pricing catalog: expected object, got %v", tok)
	}

	var keys []string
	records := make(map[string]PricingRecord)

	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decode pricing catalog key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("decode pricing catalog key: %v", keyTok)
		}

		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("decode pricing catalog entry %q: %w", key, err)
		}

		// A value with an unexpected shape (sample_spec and friends) is
		// skipped, not fatal.
		var entry remoteEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}

		if entry.InputCostPerToken == nil && entry.OutputCostPerToken == nil {
			continue
		}
		if _, exists := records[key]; exists {
			continue
		}

		record := PricingRecord{
			CacheReadCostPerToken: entry.CacheReadCost,
			MaxInputTokens:        entry.MaxInputTokens,
			MaxTokens:             entry.MaxTokens,
		}
		if entry.InputCostPerToken != nil {
			record.InputCostPerToken = *entry.InputCostPerToken
		}
		if entry.OutputCostPerToken != nil {
			record.OutputCostPerToken = *entry.OutputCostPerToken
		}

		keys = append(keys, key)
		records[key] = record
	}

	return keys, records, nil
}
