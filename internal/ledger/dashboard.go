package ledger

import (
	"context"
	"time"

	"finbook/internal/core"
)

// DashboardComposer combines reconciler and aggregator outputs into the
// comparative current-month view. Pure composition, no new aggregation.
type DashboardComposer struct {
	service    *Service
	aggregator *Aggregator
}

func NewDashboardComposer(service *Service, aggregator *Aggregator) *DashboardComposer {
	return &DashboardComposer{service: service, aggregator: aggregator}
}

// CurrentDashboard composes the current and previous month summaries, total
// balance and account list, with month-over-month percentage deltas. The
// previous month of January is December of the prior year.
func (d *DashboardComposer) CurrentDashboard(ctx context.Context, userID int64, now time.Time) (core.Dashboard, error) {
	year, month := now.Year(), int(now.Month())

	current, err := d.aggregator.MonthlySummary(ctx, userID, year, month)
	if err != nil {
		return core.Dashboard{}, err
	}

	prevYear, prevMonth := year, month-1
	if prevMonth < 1 {
		prevMonth = 12
		prevYear--
	}
	previous, err := d.aggregator.MonthlySummary(ctx, userID, prevYear, prevMonth)
	if err != nil {
		return core.Dashboard{}, err
	}

	totalBalance, err := d.service.TotalBalance(ctx, userID)
	if err != nil {
		return core.Dashboard{}, err
	}

	accounts, err := d.service.ListAccounts(ctx, userID, false)
	if err != nil {
		return core.Dashboard{}, err
	}

	return core.Dashboard{
		CurrentMonth:  current,
		PreviousMonth: previous,
		TotalBalance:  totalBalance,
		Accounts:      accounts,
		Comparison: core.Comparison{
			IncomeChange:  core.PercentChange(previous.TotalIncome, current.TotalIncome),
			ExpenseChange: core.PercentChange(previous.TotalExpenses, current.TotalExpenses),
			BalanceChange: core.PercentChange(previous.NetBalance, current.NetBalance),
		},
	}, nil
}
