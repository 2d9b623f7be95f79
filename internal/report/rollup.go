package report

import (
	"time"

	"github.com/shopspring/decimal"

	"carledger/internal/core"
)

// MonthlyBreakdown is one calendar month's rollup within an annual report.
type MonthlyBreakdown struct {
	Month        int             `json:"month"`
	MonthName    string          `json:"monthName"`
	VehiclesSold int             `json:"vehiclesSold"`
	Revenue      decimal.Decimal `json:"revenue"`
	Costs        decimal.Decimal `json:"costs"`
	Profit       decimal.Decimal `json:"profit"`
}

// monthlyBreakdown groups items by their Month field and sums revenue,
// cost, and profit per month. The result always has exactly 12 rows,
// January through December, zero-filled for months without sales; tabular
// consumers depend on that fixed shape. Items with Month 0 (no sold date)
// fall into no row.
func monthlyBreakdown(items []ReportItem) []MonthlyBreakdown {
	rows := make([]MonthlyBreakdown, 12)
	for m := 1; m <= 12; m++ {
		revenue, costs, profit := decimal.Zero, decimal.Zero, decimal.Zero
		count := 0
		for _, item := range items {
			if item.Month != m {
				continue
			}
			count++
			revenue = revenue.Add(item.SoldPrice)
			costs = costs.Add(item.TotalCost)
			profit = profit.Add(item.Profit)
		}
		rows[m-1] = MonthlyBreakdown{
			Month:        m,
			MonthName:    time.Month(m).String(),
			VehiclesSold: count,
			Revenue:      core.Round2(revenue),
			Costs:        core.Round2(costs),
			Profit:       core.Round2(profit),
		}
	}
	return rows
}
