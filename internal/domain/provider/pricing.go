package provider

// DefaultRateModel names the row used for models missing from the table.
const DefaultRateModel = "gpt-4"

// DefaultModelPricing returns the built-in pricing table.
// Prices are approximate USD per 1000 tokens and can be overridden from config.
func DefaultModelPricing() []ModelCostRate {
	return []ModelCostRate{
		{ModelID: "gpt-4", InputRate: 0.03, OutputRate: 0.06},
		{ModelID: "gpt-3.5-turbo", InputRate: 0.001, OutputRate: 0.002},

		{ModelID: "llama-3.1-sonar-small-128k-online", Provider: ProviderPerplexity, InputRate: 0.0002, OutputRate: 0.0002},
		{ModelID: "llama-3.1-sonar-large-128k-online", Provider: ProviderPerplexity, InputRate: 0.0005, OutputRate: 0.0005},
		{ModelID: "llama-3.1-sonar-huge-128k-online", Provider: ProviderPerplexity, InputRate: 0.001, OutputRate: 0.001},

		{ModelID: "GigaChat:latest", Provider: ProviderGigaChat, InputRate: 0.0001, OutputRate: 0.0001},
		{ModelID: "GigaChat-Pro:latest", Provider: ProviderGigaChat, InputRate: 0.0002, OutputRate: 0.0002},

		{ModelID: "yandexgpt", Provider: ProviderYandexGPT, InputRate: 0.0001, OutputRate: 0.0001},
		{ModelID: "yandexgpt-lite", Provider: ProviderYandexGPT, InputRate: 0.00005, OutputRate: 0.00005},
	}
}

// NewDefaultCostCalculator returns a calculator loaded with DefaultModelPricing
// whose fallback row is DefaultRateModel.
func NewDefaultCostCalculator() *CostCalculator {
	calc := NewCostCalculator()
	for _, rate := range DefaultModelPricing() {
		calc.RegisterModelWithProvider(rate.ModelID, rate.Provider, rate.InputRate, rate.OutputRate)
		if rate.ModelID == DefaultRateModel {
			calc.SetDefaultRate(rate.InputRate, rate.OutputRate)
		}
	}
	return calc
}
