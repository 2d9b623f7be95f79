// Package report derives period-scoped financial statements from vehicle
// and expense records: flat per-vehicle report lines, category breakdowns,
// and annual monthly rollups.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"carledger/internal/core"
)

func init() {
	// Monetary fields in report payloads marshal as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ReportItem is one sold vehicle's financial line for a reporting period.
// Derived, never persisted.
type ReportItem struct {
	ID            string                                   `json:"id"`
	Date          *time.Time                               `json:"date"`
	RegNumber     string                                   `json:"regNumber"`
	Model         string                                   `json:"model"`
	PurchasePrice decimal.Decimal                          `json:"purchasePrice"`
	SoldPrice     decimal.Decimal                          `json:"soldPrice"`
	Expenses      map[core.ExpenseCategory]decimal.Decimal `json:"expenses"`
	TotalExpenses decimal.Decimal                          `json:"totalExpenses"`
	TotalCost     decimal.Decimal                          `json:"totalCost"`
	Profit        decimal.Decimal                          `json:"profit"`
	Month         int                                      `json:"month,omitempty"`
}

// aggregateExpenses sums amounts per category and overall.
//
// When rounded is true each per-category accumulation is rounded to cents
// after every addition and the grand total once at the end. The monthly
// report path passes false and keeps raw sums; that divergence is part of
// the legacy monthly contract and must not be unified here.
func aggregateExpenses(expenses []core.Expense, rounded bool) (map[core.ExpenseCategory]decimal.Decimal, decimal.Decimal) {
	byCategory := make(map[core.ExpenseCategory]decimal.Decimal)
	total := decimal.Zero
	for _, e := range expenses {
		sum := byCategory[e.Category].Add(e.Amount)
		if rounded {
			sum = core.Round2(sum)
		}
		byCategory[e.Category] = sum
		total = total.Add(e.Amount)
	}
	if rounded {
		total = core.Round2(total)
	}
	// Drop categories that net to zero so the mapping only carries
	// categories with actual spend.
	for c, amount := range byCategory {
		if amount.IsZero() {
			delete(byCategory, c)
		}
	}
	return byCategory, total
}

// buildItem turns one SOLD vehicle and its expenses into a report line.
// Status filtering happens upstream in the store query; a SOLD vehicle
// missing its sold price is a data-integrity anomaly tolerated as zero
// revenue rather than a failed report.
func buildItem(v core.Vehicle, rounded bool) ReportItem {
	expenses, totalExpenses := aggregateExpenses(v.Expenses, rounded)

	soldPrice := decimal.Zero
	if v.SoldPrice != nil {
		soldPrice = *v.SoldPrice
	}

	totalCost := v.PurchasePrice.Add(totalExpenses)
	if rounded {
		totalCost = core.Round2(totalCost)
	}
	profit := soldPrice.Sub(totalCost)
	if rounded {
		profit = core.Round2(profit)
	}

	month := 0
	if v.SoldDate != nil {
		month = int(v.SoldDate.Month())
	}

	return ReportItem{
		ID:            v.ID,
		Date:          v.SoldDate,
		RegNumber:     v.RegNumber,
		Model:         v.Label(),
		PurchasePrice: v.PurchasePrice,
		SoldPrice:     soldPrice,
		Expenses:      expenses,
		TotalExpenses: totalExpenses,
		TotalCost:     totalCost,
		Profit:        profit,
		Month:         month,
	}
}
