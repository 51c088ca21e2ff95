package pricing

import "strings"

// providerPrefixes are tried in this fixed order when the bare model name has
// no exact catalog entry.
var providerPrefixes = []string{"google/", "vertex_ai/", "gemini/"}

// Resolve maps a free-text model name to a pricing record. The fallback chain
// is ordered and short-circuits on the first hit:
//
//  1. exact catalog key
//  2. provider-prefixed variants
//  3. exact experimental-table entry
//  4. catalog substring scan over keys containing "gemini", first match in
//     catalog (document) iteration order
//  5. experimental-table substring scan
//
// The substring scans deliberately take the first match in iteration order
// rather than a best match; callers treat a miss as zero cost.
func (c *Catalog) Resolve(modelName string) (PricingRecord, bool) {
	c.ensure()

	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return PricingRecord{}, false
	}

	if record, ok := c.lookup(modelName); ok {
		return record, true
	}

	for _, prefix := range providerPrefixes {
		if record, ok := c.lookup(prefix + modelName); ok {
			return record, true
		}
	}

	if record, ok := experimentalExact(modelName); ok {
		return record, true
	}

	lowerName := strings.ToLower(modelName)
	for _, key := range c.keys {
		lowerKey := strings.ToLower(key)
		if !strings.Contains(lowerKey, "gemini") {
			continue
		}
		if strings.Contains(lowerKey, lowerName) || strings.Contains(lowerName, lowerKey) {
			return c.records[key], true
		}
	}

	for _, entry := range experimentalModels {
		lowerKey := strings.ToLower(entry.Name)
		if strings.Contains(lowerName, lowerKey) || strings.Contains(lowerKey, lowerName) {
			return entry.Record, true
		}
	}

	return PricingRecord{}, false
}
