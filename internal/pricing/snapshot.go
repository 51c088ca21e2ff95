package pricing

func floatPtr(v float64) *float64 {
	vv := v
	return &vv
}

// offlineSnapshot seeds the catalog when the network is disabled. Values are
// a point-in-time copy of the LiteLLM document for the Gemini family, USD per
// token.
var offlineSnapshot = []catalogEntry{
	{Name: "gemini-2.5-pro", Record: PricingRecord{
		InputCostPerToken:     1.25e-06,
		OutputCostPerToken:    1e-05,
		CacheReadCostPerToken: floatPtr(3.1e-07),
		MaxInputTokens:        1_048_576,
		MaxTokens:             65_535,
	}},
	{Name: "gemini-2.5-flash", Record: PricingRecord{
		InputCostPerToken:     3e-07,
		OutputCostPerToken:    2.5e-06,
		CacheReadCostPerToken: floatPtr(7.5e-08),
		MaxInputTokens:        1_048_576,
		MaxTokens:             65_535,
	}},
	{Name: "gemini-2.5-flash-lite", Record: PricingRecord{
		InputCostPerToken:     1e-07,
		OutputCostPerToken:    4e-07,
		CacheReadCostPerToken: floatPtr(2.5e-08),
		MaxInputTokens:        1_048_576,
		MaxTokens:             65_535,
	}},
	{Name: "gemini-2.0-flash", Record: PricingRecord{
		InputCostPerToken:     1e-07,
		OutputCostPerToken:    4e-07,
		CacheReadCostPerToken: floatPtr(2.5e-08),
		MaxInputTokens:        1_048_576,
		MaxTokens:             8_192,
	}},
	{Name: "gemini-2.0-flash-lite", Record: PricingRecord{
		InputCostPerToken:     7.5e-08,
		OutputCostPerToken:    3e-07,
		MaxInputTokens:        1_048_576,
		MaxTokens:             8_192,
	}},
	{Name: "gemini-1.5-pro", Record: PricingRecord{
		InputCostPerToken:  1.25e-06,
		OutputCostPerToken: 5e-06,
		MaxInputTokens:     2_097_152,
		MaxTokens:          8_192,
	}},
	{Name: "gemini-1.5-flash", Record: PricingRecord{
		InputCostPerToken:  7.5e-08,
		OutputCostPerToken: 3e-07,
		MaxInputTokens:     1_048_576,
		MaxTokens:          8_192,
	}},
}
