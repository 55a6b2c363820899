package ledger

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"finbook/internal/core"
	"finbook/internal/storage"
)

// Aggregator derives read-only summaries from the transaction log. It never
// mutates state, so its queries can run concurrently with each other.
type Aggregator struct {
	repo *storage.SQLiteRepository
}

func NewAggregator(repo *storage.SQLiteRepository) *Aggregator {
	return &Aggregator{repo: repo}
}

// MonthlySummary sums the user's income and expenses over one calendar
// month, active accounts only.
func (a *Aggregator) MonthlySummary(ctx context.Context, userID int64, year, month int) (core.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("%w: month %d out of range", core.ErrInvalidArgument, month)
	}
	start, end := core.MonthRange(year, month)
	income, expenses, count, err := a.repo.PeriodTotals(ctx, userID, start, end)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return core.MonthlySummary{
		Year:             year,
		Month:            month,
		TotalIncome:      income,
		TotalExpenses:    expenses,
		NetBalance:       income.Sub(expenses),
		TransactionCount: count,
	}, nil
}

// CategoryBreakdown groups the user's expense transactions over the range by
// category, sorted by total descending with name as tiebreak. Uncategorized
// spending lands in a synthetic bucket.
func (a *Aggregator) CategoryBreakdown(ctx context.Context, userID int64, start, end core.Date) ([]core.CategoryTotal, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}
	if end.Before(start.Time) {
		return nil, fmt.Errorf("%w: range end before start", core.ErrInvalidArgument)
	}
	return a.repo.ExpenseByCategory(ctx, userID, start, end)
}

// YearlyOverview is 12 monthly summaries plus their element-wise sum. The
// months are independent reads, so they run as one errgroup.
func (a *Aggregator) YearlyOverview(ctx context.Context, userID int64, year int) (core.YearlyOverview, error) {
	months := make([]core.MonthlySummary, 12)

	g, ctx := errgroup.WithContext(ctx)
	for month := 1; month <= 12; month++ {
		g.Go(func() error {
			summary, err := a.MonthlySummary(ctx, userID, year, month)
			if err != nil {
				return err
			}
			months[month-1] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.YearlyOverview{}, err
	}

	totals := core.MonthlySummary{Year: year}
	for _, m := range months {
		totals = totals.Add(m)
	}
	totals.Month = 0

	return core.YearlyOverview{
		Year:         year,
		MonthlyData:  months,
		YearlyTotals: totals,
	}, nil
}
