package session

import "github.com/shopspring/decimal"

// Totals is the cached sum of every exchange in a session.
type Totals struct {
	TotalInputTokens   int             `json:"total_input_tokens"`
	TotalOutputTokens  int             `json:"total_output_tokens"`
	TotalTokens        int             `json:"total_tokens"`
	TotalEstimatedCost decimal.Decimal `json:"total_estimated_cost"`
	MessageCount       int             `json:"message_count"`
}

// RecomputeTotals sums the accounting fields of every exchange. Totals are
// always rebuilt from scratch, never incremented, so calling it twice on the
// same exchanges yields identical values.
func RecomputeTotals(exchanges []*Exchange) Totals {
	t := Totals{TotalEstimatedCost: decimal.Zero}
	for _, ex := range exchanges {
		if ex == nil {
			continue
		}
		t.TotalInputTokens += ex.InputTokens
		t.TotalOutputTokens += ex.OutputTokens
		t.TotalTokens += ex.TotalTokens
		t.TotalEstimatedCost = t.TotalEstimatedCost.Add(ex.EstimatedCost.Round(CostPlaces))
		t.MessageCount++
	}
	return t
}

// Equal reports whether two totals match exactly.
func (t Totals) Equal(other Totals) bool {
	return t.TotalInputTokens == other.TotalInputTokens &&
		t.TotalOutputTokens == other.TotalOutputTokens &&
		t.TotalTokens == other.TotalTokens &&
		t.MessageCount == other.MessageCount &&
		t.TotalEstimatedCost.Equal(other.TotalEstimatedCost)
}
