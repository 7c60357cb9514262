package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Totals holds the headline aggregates for the dashboard cards.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// ComputeTotals sums amounts by kind over a snapshot. It is a pure
// function of its input and order-independent.
func ComputeTotals(records []Record) Totals {
	income := decimal.Zero
	expense := decimal.Zero

	for _, r := range records {
		switch r.Kind {
		case KindIncome:
			income = income.Add(r.Amount)
		case KindExpense:
			expense = expense.Add(r.Amount)
		}
	}

	return Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// ChartPoint is one entry of the income-vs-expense time series.
type ChartPoint struct {
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
	// Timestamp is the parsed transaction date in unix seconds, zero
	// when the date is absent or unparsable.
	Timestamp int64
}

// chartLabelLayout is the day/month axis label format.
const chartLabelLayout = "02/01"

// chartPlaceholderLabel marks points whose record has no transaction date.
const chartPlaceholderLabel = "N/A"

// ChartSeries maps the most recent limit records of a snapshot to chart
// points, re-sorted ascending by transaction date for left-to-right
// rendering. The input is expected in snapshot order, newest first.
// Points with an absent or unparsable date keep a zero timestamp and
// therefore sort to the start instead of being dropped.
func ChartSeries(records []Record, limit int) []ChartPoint {
	if limit < 0 {
		limit = 0
	}
	if limit > len(records) {
		limit = len(records)
	}

	points := make([]ChartPoint, 0, limit)
	for _, r := range records[:limit] {
		p := ChartPoint{
			Label:   chartPlaceholderLabel,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}

		if r.OccurredOn != "" {
			if t, err := time.Parse(DateLayout, r.OccurredOn); err == nil {
				p.Label = t.Format(chartLabelLayout)
				p.Timestamp = t.Unix()
			} else {
				p.Label = r.OccurredOn
			}
		}

		switch r.Kind {
		case KindIncome:
			p.Income = r.Amount
		case KindExpense:
			p.Expense = r.Amount
		}

		points = append(points, p)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	return points
}
