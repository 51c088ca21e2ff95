package pricing

// CacheMultiplier is the fraction of the input rate charged for cached reads
// when the catalog entry has no explicit cache-read cost.
const CacheMultiplier = 0.25

// CostBreakdown is the per-call cost split by token class. Thought and tool
// tokens bill at the output rate.
type CostBreakdown struct {
	InputCost    float64
	OutputCost   float64
	CachedCost   float64
	ThoughtsCost float64
	ToolCost     float64
	TotalCost    float64
}

// ComputeCost prices one call's token counts against the resolved record for
// modelName. It returns nil when the model resolves to nothing; callers must
// treat nil as "zero cost, data absent", not as an error.
func (c *Catalog) ComputeCost(modelName string, inputTokens, outputTokens, cachedTokens, thoughtsTokens, toolTokens int64) *CostBreakdown {
	record, ok := c.Resolve(modelName)
	if !ok {
		return nil
	}

	cachedRate := record.InputCostPerToken * CacheMultiplier
	if record.CacheReadCostPerToken != nil {
		cachedRate = *record.CacheReadCostPerToken
	}

	breakdown := CostBreakdown{
		InputCost:    float64(inputTokens) * record.InputCostPerToken,
		OutputCost:   float64(outputTokens) * record.OutputCostPerToken,
		CachedCost:   float64(cachedTokens) * cachedRate,
		ThoughtsCost: float64(thoughtsTokens) * record.OutputCostPerToken,
		ToolCost:     float64(toolTokens) * record.OutputCostPerToken,
	}
	breakdown.TotalCost = breakdown.InputCost + breakdown.OutputCost + breakdown.CachedCost + breakdown.ThoughtsCost + breakdown.ToolCost
	return &breakdown
}
