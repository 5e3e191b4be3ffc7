// Package metrics provides domain types for token usage statistics.
package metrics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Overview aggregates usage across all sessions.
type Overview struct {
	TotalSessions     int             `json:"total_sessions"`
	TotalMessages     int             `json:"total_messages"`
	TotalInputTokens  int             `json:"total_input_tokens"`
	TotalOutputTokens int             `json:"total_output_tokens"`
	TotalTokens       int             `json:"total_tokens"`
	TotalCost         decimal.Decimal `json:"total_cost"`
}

// Add folds one session's cached totals into the overview.
func (o *Overview) Add(messages, inputTokens, outputTokens, totalTokens int, cost decimal.Decimal) {
	o.TotalSessions++
	o.TotalMessages += messages
	o.TotalInputTokens += inputTokens
	o.TotalOutputTokens += outputTokens
	o.TotalTokens += totalTokens
	o.TotalCost = o.TotalCost.Add(cost)
}

// SessionUsage summarizes one session's cached totals.
type SessionUsage struct {
	SessionID   string          `json:"session_id"`
	Title       string          `json:"title"`
	Model       string          `json:"model"`
	Messages    int             `json:"messages"`
	TotalTokens int             `json:"total_tokens"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AgentUsage is the usage report for the sessions opened by one agent,
// newest session first.
type AgentUsage struct {
	AgentID  string         `json:"agent_id"`
	Overview Overview       `json:"overview"`
	Sessions []SessionUsage `json:"sessions"`
}

// ModelUsage aggregates usage for one model, based on session totals.
type ModelUsage struct {
	Model       string          `json:"model"`
	Sessions    int             `json:"sessions"`
	TotalTokens int             `json:"total_tokens"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// UsageStats is the global statistics report.
type UsageStats struct {
	Overview Overview     `json:"overview"`
	ByModel  []ModelUsage `json:"by_model"`
}

// SortByCost orders model usage by descending cost, then by model name.
func SortByCost(usage []ModelUsage) {
	sort.SliceStable(usage, func(i, j int) bool {
		if c := usage[i].TotalCost.Cmp(usage[j].TotalCost); c != 0 {
			return c > 0
		}
		return usage[i].Model < usage[j].Model
	})
}

// AverageCostPerToken returns the overall cost per token, or zero when no
// tokens were used.
func (o Overview) AverageCostPerToken() decimal.Decimal {
	if o.TotalTokens == 0 {
		return decimal.Zero
	}
	return o.TotalCost.Div(decimal.NewFromInt(int64(o.TotalTokens)))
}
