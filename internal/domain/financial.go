package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExhibitionFinancial struct {
	ID            uint            `json:"id"`
	ExhibitionID  uint            `json:"exhibition_id"`
	TotalRevenue  decimal.Decimal `json:"total_revenue" swaggertype:"string"`
	TotalExpenses decimal.Decimal `json:"total_expenses" swaggertype:"string"`
	NetProfit     decimal.Decimal `json:"net_profit" swaggertype:"string"`
	CalculatedAt  time.Time       `json:"calculated_at"`
}

// NewFinancial aggregates confirmed university fees into revenue and confirmed vendor
// costs into expenses.
func NewFinancial(exhibitionID uint, participations []Participation, now time.Time) ExhibitionFinancial {
	revenue := decimal.Zero
	expenses := decimal.Zero
	for _, p := range participations {
		if !p.ReadyForSettlement() {
			continue
		}

		caps := p.Capabilities()
		if caps.Pays {
			revenue = revenue.Add(p.Fee)
		}
		if caps.Proposes {
			expenses = expenses.Add(p.ProposedCost)
		}
	}

	return ExhibitionFinancial{
		ExhibitionID:  exhibitionID,
		TotalRevenue:  revenue,
		TotalExpenses: expenses,
		NetProfit:     revenue.Sub(expenses),
		CalculatedAt:  now,
	}
}

type Overview struct {
	TotalExhibitions     int64            `json:"total_exhibitions"`
	ActiveExhibitions    int64            `json:"active_exhibitions"`
	CompletedExhibitions int64            `json:"completed_exhibitions"`
	CancelledExhibitions int64            `json:"cancelled_exhibitions"`
	StatusBreakdown      map[string]int64 `json:"status_breakdown"`
	TotalRevenue         decimal.Decimal  `json:"total_revenue" swaggertype:"string"`
	TotalExpenses        decimal.Decimal  `json:"total_expenses" swaggertype:"string"`
	NetProfit            decimal.Decimal  `json:"net_profit" swaggertype:"string"`
}
