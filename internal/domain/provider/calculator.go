package provider

import (
	"sort"
	"sync"
)

// ModelCostRate represents the cost rates for a specific model.
type ModelCostRate struct {
	ModelID    string  `json:"model"`
	Provider   string  `json:"provider,omitempty"` // informational
	InputRate  float64 `json:"input_per_1k"`
	OutputRate float64 `json:"output_per_1k"`
}

// CostCalculator holds the pricing table. Lookups are by exact model id;
// unknown models are priced at the default rate.
type CostCalculator struct {
	mu          sync.RWMutex
	models      map[string]ModelCostRate
	defaultRate ModelCostRate
}

// NewCostCalculator creates a new CostCalculator with an empty table and a zero default rate.
func NewCostCalculator() *CostCalculator {
	return &CostCalculator{
		models: make(map[string]ModelCostRate),
	}
}

// RegisterModel registers a model with its cost rates.
// If the model already exists, its rates are updated.
func (c *CostCalculator) RegisterModel(modelID string, inputRate, outputRate float64) {
	c.RegisterModelWithProvider(modelID, "", inputRate, outputRate)
}

// RegisterModelWithProvider registers a model with its provider and cost rates.
func (c *CostCalculator) RegisterModelWithProvider(modelID, provider string, inputRate, outputRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.models[modelID] = ModelCostRate{
		ModelID:    modelID,
		Provider:   provider,
		InputRate:  inputRate,
		OutputRate: outputRate,
	}
}

// SetDefaultRate sets the rate used for models missing from the table.
func (c *CostCalculator) SetDefaultRate(inputRate, outputRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.defaultRate = ModelCostRate{InputRate: inputRate, OutputRate: outputRate}
}

// HasModel checks if a model is registered in the calculator.
func (c *CostCalculator) HasModel(modelID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.models[modelID]
	return exists
}

// Rate returns the rate for modelID, falling back to the default rate.
func (c *CostCalculator) Rate(modelID string) ModelCostRate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if rate, ok := c.models[modelID]; ok {
		return rate
	}
	rate := c.defaultRate
	rate.ModelID = modelID
	return rate
}

// EstimateCost prices a call by model id.
func (c *CostCalculator) EstimateCost(inputTokens, outputTokens int, modelID string) CostBreakdown {
	return CalculateCost(c.Rate(modelID), inputTokens, outputTokens)
}

// ListModels returns the registered rates sorted by model id.
func (c *CostCalculator) ListModels() []ModelCostRate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ModelCostRate, 0, len(c.models))
	for _, rate := range c.models {
		out = append(out, rate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}
