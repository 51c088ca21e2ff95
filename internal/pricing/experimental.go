package pricing

// experimentalModels lists preview and experimental Gemini models that are
// free of charge and routinely missing from the remote catalog. The table is
// a slice so scan order stays deterministic. It is consulted only where the
// catalog has no entry.
var experimentalModels = []catalogEntry{
	{Name: "gemini-2.0-flash-exp", Record: PricingRecord{}},
	{Name: "gemini-2.0-flash-thinking-exp", Record: PricingRecord{}},
	{Name: "gemini-2.0-flash-thinking-exp-01-21", Record: PricingRecord{}},
	{Name: "gemini-2.0-pro-exp", Record: PricingRecord{}},
	{Name: "gemini-2.5-pro-exp-03-25", Record: PricingRecord{}},
	{Name: "gemini-exp-1206", Record: PricingRecord{}},
	{Name: "gemini-exp-1121", Record: PricingRecord{}},
}

func experimentalExact(name string) (PricingRecord, bool) {
	for _, entry := range experimentalModels {
		if entry.Name == name {
			return entry.Record, true
		}
	}
	return PricingRecord{}, false
}
