package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/metrics"
)

// Compile-time check that StatsRepository implements StatsStore.
var _ ports.StatsStore = (*StatsRepository)(nil)

// StatsRepository computes global usage statistics from cached session totals.
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// UsageStats returns the global overview and a per-model breakdown ordered
// by descending cost. Costs are summed as decimals in Go because SQLite
// stores them as text.
func (r *StatsRepository) UsageStats(ctx context.Context) (*metrics.UsageStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT model, message_count, total_input_tokens, total_output_tokens, total_tokens, total_estimated_cost
		FROM sessions
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	stats := &metrics.UsageStats{
		Overview: metrics.Overview{TotalCost: decimal.Zero},
	}
	byModel := make(map[string]*metrics.ModelUsage)
	var order []string

	for rows.Next() {
		var (
			model                          string
			messages, input, output, total int
			cost                           string
		)
		if err := rows.Scan(&model, &messages, &input, &output, &total, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		c, err := parseDecimal(cost)
		if err != nil {
			return nil, err
		}

		stats.Overview.Add(messages, input, output, total, c)

		usage, ok := byModel[model]
		if !ok {
			usage = &metrics.ModelUsage{Model: model, TotalCost: decimal.Zero}
			byModel[model] = usage
			order = append(order, model)
		}
		usage.Sessions++
		usage.TotalTokens += total
		usage.TotalCost = usage.TotalCost.Add(c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.ByModel = make([]metrics.ModelUsage, 0, len(order))
	for _, model := range order {
		stats.ByModel = append(stats.ByModel, *byModel[model])
	}
	metrics.SortByCost(stats.ByModel)

	return stats, nil
}

// AgentUsage returns the sessions opened by agentID, newest first, with
// their combined totals. An agent without sessions gets an empty report.
func (r *StatsRepository) AgentUsage(ctx context.Context, agentID string) (*metrics.AgentUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, model, message_count, total_input_tokens, total_output_tokens, total_tokens,
			total_estimated_cost, created_at
		FROM sessions
		WHERE agent_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent usage: %w", err)
	}
	defer rows.Close()

	usage := &metrics.AgentUsage{
		AgentID:  agentID,
		Overview: metrics.Overview{TotalCost: decimal.Zero},
		Sessions: []metrics.SessionUsage{},
	}

	for rows.Next() {
		var (
			su            metrics.SessionUsage
			input, output int
			cost          string
			createdAt     string
		)
		if err := rows.Scan(&su.SessionID, &su.Title, &su.Model, &su.Messages, &input, &output, &su.TotalTokens, &cost, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan agent usage: %w", err)
		}
		if su.TotalCost, err = parseDecimal(cost); err != nil {
			return nil, err
		}
		if su.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		usage.Overview.Add(su.Messages, input, output, su.TotalTokens, su.TotalCost)
		usage.Sessions = append(usage.Sessions, su)
	}

	return usage, rows.Err()
}
