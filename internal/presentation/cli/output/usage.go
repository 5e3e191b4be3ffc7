package output

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/domain/metrics"
	"github.com/jbctechsolutions/playground/internal/domain/session"
)

// UsageRenderer renders replies and token accounting.
type UsageRenderer struct {
	formatter *Formatter
}

// NewUsageRenderer creates a renderer writing through formatter.
func NewUsageRenderer(formatter *Formatter) *UsageRenderer {
	return &UsageRenderer{formatter: formatter}
}

// RenderReply prints the reply text between a provider line and a usage line.
// Failed calls get the error styling; their text is the error description.
func (r *UsageRenderer) RenderReply(res *chat.DispatchResult) {
	source := fmt.Sprintf("%s (%s)", res.Provider, res.Model)
	if res.Failed {
		_ = r.formatter.Error("%s", source)
	} else {
		_ = r.formatter.Success("%s", source)
	}
	_ = r.formatter.Println("%s", res.ReplyText)
	_ = r.formatter.Println("%s", r.formatter.Dim(UsageLine(res)))
}

// RenderTotals prints the cached totals of a session.
func (r *UsageRenderer) RenderTotals(totals session.Totals) {
	f := r.formatter
	_ = f.Header("Session Totals")
	_ = f.Item("Messages", strconv.Itoa(totals.MessageCount))
	_ = f.Item("Input Tokens", strconv.Itoa(totals.TotalInputTokens))
	_ = f.Item("Output Tokens", strconv.Itoa(totals.TotalOutputTokens))
	_ = f.Item("Total Tokens", strconv.Itoa(totals.TotalTokens))
	_ = f.Item("Estimated Cost", FormatCost(totals.TotalEstimatedCost))
	_ = f.Println("")
}

// RenderStats prints the global overview followed by the per-model table.
func (r *UsageRenderer) RenderStats(stats *metrics.UsageStats) {
	f := r.formatter
	o := stats.Overview
	_ = f.Header("Usage Overview")
	_ = f.Item("Sessions", strconv.Itoa(o.TotalSessions))
	_ = f.Item("Messages", strconv.Itoa(o.TotalMessages))
	_ = f.Item("Input Tokens", strconv.Itoa(o.TotalInputTokens))
	_ = f.Item("Output Tokens", strconv.Itoa(o.TotalOutputTokens))
	_ = f.Item("Total Tokens", strconv.Itoa(o.TotalTokens))
	_ = f.Item("Estimated Cost", FormatCost(o.TotalCost))
	_ = f.Item("Cost / Token", o.AverageCostPerToken().StringFixed(8))
	_ = f.Println("")

	if len(stats.ByModel) == 0 {
		_ = f.Info("No usage recorded yet")
		return
	}

	_ = f.SubHeader("By Model")
	table := TableData{
		Columns: []TableColumn{
			{Header: "MODEL"},
			{Header: "SESSIONS", Align: AlignRight},
			{Header: "TOKENS", Align: AlignRight},
			{Header: "COST", Align: AlignRight},
		},
	}
	for _, m := range stats.ByModel {
		table.Rows = append(table.Rows, []string{
			m.Model,
			strconv.Itoa(m.Sessions),
			strconv.Itoa(m.TotalTokens),
			FormatCost(m.TotalCost),
		})
	}
	_ = f.Table(table)
}

// UsageLine summarizes the token counts and cost of one call.
func UsageLine(res *chat.DispatchResult) string {
	return fmt.Sprintf("tokens: %d in / %d out / %d total, cost: %s",
		res.InputTokens, res.OutputTokens, res.TotalTokens, FormatCost(session.RoundCost(res.Cost.TotalCost)))
}

// FormatCost renders a cost with the persisted number of decimal places.
func FormatCost(cost decimal.Decimal) string {
	return cost.StringFixed(session.CostPlaces)
}
