package ledger

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"finbook/internal/core"
)

func seedMonth(t *testing.T, svc *Service, userID, accountID int64, year, month int, incomeCents, expenseCents int64) {
	t.Helper()
	ctx := context.Background()
	if incomeCents > 0 {
		if _, err := svc.CreateTransaction(ctx, userID, core.TransactionSpec{
			AccountID: accountID,
			Amount:    core.Money{Cents: incomeCents},
			Type:      core.Income,
			Date:      core.NewDate(year, month, 5),
		}); err != nil {
			t.Fatalf("seed income %d-%d: %v", year, month, err)
		}
	}
	if expenseCents > 0 {
		if _, err := svc.CreateTransaction(ctx, userID, core.TransactionSpec{
			AccountID: accountID,
			Amount:    core.Money{Cents: expenseCents},
			Type:      core.Expense,
			Date:      core.NewDate(year, month, 15),
		}); err != nil {
			t.Fatalf("seed expense %d-%d: %v", year, month, err)
		}
	}
}

func TestMonthlySummaryIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	aggregator := NewAggregator(repo)
	ctx := context.Background()

	account := mustAccount(t, svc, 1, "Main", 0)
	seedMonth(t, svc, 1, account.ID, 2024, 3, 10000, 3000)

	first, err := aggregator.MonthlySummary(ctx, 1, 2024, 3)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	second, err := aggregator.MonthlySummary(ctx, 1, 2024, 3)
	if err != nil {
		t.Fatalf("MonthlySummary again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated summary differs: %+v vs %+v", first, second)
	}

	// Summaries are pure reads; the underlying balance stays put.
	mustBalance(t, svc, account.ID, 1, 7000)
}

func TestMonthlySummaryValidation(t *testing.T) {
	repo := newTestRepo(t)
	aggregator := NewAggregator(repo)

	for _, month := range []int{0, 13, -1} {
		if _, err := aggregator.MonthlySummary(context.Background(), 1, 2024, month); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("month %d error = %v, want ErrInvalidArgument", month, err)
		}
	}
}

func TestYearlyOverview(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	aggregator := NewAggregator(repo)
	ctx := context.Background()

	account := mustAccount(t, svc, 1, "Main", 0)
	seedMonth(t, svc, 1, account.ID, 2024, 1, 10000, 2000)
	seedMonth(t, svc, 1, account.ID, 2024, 6, 15000, 5000)
	seedMonth(t, svc, 1, account.ID, 2024, 12, 0, 1000)
	// Other years never leak in.
	seedMonth(t, svc, 1, account.ID, 2023, 12, 99999, 0)

	overview, err := aggregator.YearlyOverview(ctx, 1, 2024)
	if err != nil {
		t.Fatalf("YearlyOverview: %v", err)
	}
	if overview.Year != 2024 || len(overview.MonthlyData) != 12 {
		t.Fatalf("overview = year %d with %d months", overview.Year, len(overview.MonthlyData))
	}

	// Months come back in calendar order.
	var sumIncome, sumExpenses int64
	var sumCount int
	for i, m := range overview.MonthlyData {
		if m.Month != i+1 || m.Year != 2024 {
			t.Errorf("slot %d holds %d-%02d", i, m.Year, m.Month)
		}
		sumIncome += m.TotalIncome.Cents
		sumExpenses += m.TotalExpenses.Cents
		sumCount += m.TransactionCount
	}

	totals := overview.YearlyTotals
	if totals.TotalIncome.Cents != sumIncome || totals.TotalExpenses.Cents != sumExpenses || totals.TransactionCount != sumCount {
		t.Errorf("totals %+v do not match month sum %d/%d/%d", totals, sumIncome, sumExpenses, sumCount)
	}
	if totals.TotalIncome.Cents != 25000 || totals.TotalExpenses.Cents != 8000 || totals.NetBalance.Cents != 17000 {
		t.Errorf("totals = %+v, want 25000/8000/17000", totals)
	}
	if totals.Month != 0 {
		t.Errorf("yearly totals month = %d, want 0", totals.Month)
	}

	jan := overview.MonthlyData[0]
	if jan.TotalIncome.Cents != 10000 || jan.TotalExpenses.Cents != 2000 || jan.TransactionCount != 2 {
		t.Errorf("january = %+v, want 10000/2000/2", jan)
	}
}

func TestCategoryBreakdownValidation(t *testing.T) {
	repo := newTestRepo(t)
	aggregator := NewAggregator(repo)
	ctx := context.Background()

	start := core.NewDate(2024, 3, 31)
	end := core.NewDate(2024, 3, 1)
	if _, err := aggregator.CategoryBreakdown(ctx, 1, start, end); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("inverted range error = %v, want ErrInvalidArgument", err)
	}
	if _, err := aggregator.CategoryBreakdown(ctx, 1, core.Date{}, end); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("zero start error = %v, want ErrInvalidDate", err)
	}
}

func TestCategoryBreakdownOrdering(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	aggregator := NewAggregator(repo)
	ctx := context.Background()

	account := mustAccount(t, svc, 1, "Main", 0)
	food, err := svc.CreateCategory(ctx, "Food", core.Expense, "#dc3545")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	rent, err := svc.CreateCategory(ctx, "Rent", core.Expense, "#6610f2")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	for _, spec := range []core.TransactionSpec{
		{AccountID: account.ID, CategoryID: &food.ID, Amount: core.Money{Cents: 3000}, Type: core.Expense, Date: core.NewDate(2024, 3, 2)},
		{AccountID: account.ID, CategoryID: &rent.ID, Amount: core.Money{Cents: 80000}, Type: core.Expense, Date: core.NewDate(2024, 3, 1)},
		{AccountID: account.ID, CategoryID: &food.ID, Amount: core.Money{Cents: 2500}, Type: core.Expense, Date: core.NewDate(2024, 3, 9)},
	} {
		if _, err := svc.CreateTransaction(ctx, 1, spec); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	start, end := core.MonthRange(2024, 3)
	breakdown, err := aggregator.CategoryBreakdown(ctx, 1, start, end)
	if err != nil {
		t.Fatalf("CategoryBreakdown: %v", err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("got %d buckets, want 2", len(breakdown))
	}
	if breakdown[0].CategoryName != "Rent" || breakdown[0].Total.Cents != 80000 {
		t.Errorf("top bucket = %+v, want Rent 80000", breakdown[0])
	}
	if breakdown[1].CategoryName != "Food" || breakdown[1].Total.Cents != 5500 || breakdown[1].TransactionCount != 2 {
		t.Errorf("second bucket = %+v, want Food 5500 over 2 transactions", breakdown[1])
	}
}
