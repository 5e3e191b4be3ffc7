package provider

import "github.com/jbctechsolutions/playground/internal/domain/chat"

// CostBreakdown represents the cost breakdown for a single model invocation.
type CostBreakdown = chat.CostBreakdown

// CalculateCost prices a call at the given per-1K rate. Negative token counts
// are treated as zero.
func CalculateCost(rate ModelCostRate, inputTokens, outputTokens int) CostBreakdown {
	inputTokens = max(inputTokens, 0)
	outputTokens = max(outputTokens, 0)

	inputCost := (float64(inputTokens) / 1000.0) * rate.InputRate
	outputCost := (float64(outputTokens) / 1000.0) * rate.OutputRate

	return CostBreakdown{
		InputCost:        inputCost,
		OutputCost:       outputCost,
		TotalCost:        inputCost + outputCost,
		InputPricePer1K:  rate.InputRate,
		OutputPricePer1K: rate.OutputRate,
	}
}
