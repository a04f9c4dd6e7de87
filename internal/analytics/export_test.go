package analytics

// ModelEstimate runs a registered model directly, bypassing storage.
func ModelEstimate(name string, input ModelInput) float64 {
	return models[name].Estimate(input)
}
