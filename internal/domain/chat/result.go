package chat

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// CostBreakdown is the itemized price of one call. Amounts are in USD and
// unrounded.
type CostBreakdown struct {
	InputCost        float64 `json:"input_cost"`
	OutputCost       float64 `json:"output_cost"`
	TotalCost        float64 `json:"total_cost"`
	InputPricePer1K  float64 `json:"input_price_per_1k"`
	OutputPricePer1K float64 `json:"output_price_per_1k"`
}

// DispatchResult is the outcome of a single routed generation call. It is
// returned for failed calls too, with ReplyText carrying the error.
type DispatchResult struct {
	ReplyText    string        `json:"reply_text"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	TotalTokens  int           `json:"total_tokens"`
	Cost         CostBreakdown `json:"cost"`
	Model        string        `json:"model"`
	Provider     string        `json:"provider"`
	Failed       bool          `json:"failed"`
}
