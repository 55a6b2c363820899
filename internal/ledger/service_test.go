package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"finbook/internal/core"
	"finbook/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// reconcilers returns both strategies over the same repo; the consistency
// contract must hold regardless of which one is configured.
func reconcilers(repo *storage.SQLiteRepository) map[string]Reconciler {
	return map[string]Reconciler{
		"maintained-cache": NewMaintainedCache(repo),
		"computed-on-read": NewComputedOnRead(repo),
	}
}

func mustAccount(t *testing.T, svc *Service, userID int64, name string, opening int64) core.Account {
	t.Helper()
	a, err := svc.CreateAccount(context.Background(), userID, core.AccountSpec{
		Name:           name,
		Type:           core.BankAccount,
		OpeningBalance: core.Money{Cents: opening},
	})
	if err != nil {
		t.Fatalf("CreateAccount(%q): %v", name, err)
	}
	return a
}

func mustBalance(t *testing.T, svc *Service, id, userID, want int64) {
	t.Helper()
	a, err := svc.GetAccount(context.Background(), id, userID)
	if err != nil {
		t.Fatalf("GetAccount(%d): %v", id, err)
	}
	if a.Balance.Cents != want {
		t.Errorf("account %d balance = %d, want %d", id, a.Balance.Cents, want)
	}
}

func TestLedgerScenario(t *testing.T) {
	repo := newTestRepo(t)
	for name, reconciler := range reconcilers(repo) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(repo, reconciler, nil)
			aggregator := NewAggregator(repo)
			userID := int64(100)
			if name == "computed-on-read" {
				userID = 200
			}

			account := mustAccount(t, svc, userID, "Checking", 0)
			mustBalance(t, svc, account.ID, userID, 0)

			income, err := svc.CreateTransaction(ctx, userID, core.TransactionSpec{
				AccountID: account.ID,
				Amount:    core.Money{Cents: 10000},
				Type:      core.Income,
				Date:      core.NewDate(2024, 3, 5),
			})
			if err != nil {
				t.Fatalf("create income: %v", err)
			}
			mustBalance(t, svc, account.ID, userID, 10000)

			expense, err := svc.CreateTransaction(ctx, userID, core.TransactionSpec{
				AccountID: account.ID,
				Amount:    core.Money{Cents: 3000},
				Type:      core.Expense,
				Date:      core.NewDate(2024, 3, 10),
			})
			if err != nil {
				t.Fatalf("create expense: %v", err)
			}
			mustBalance(t, svc, account.ID, userID, 7000)

			summary, err := aggregator.MonthlySummary(ctx, userID, 2024, 3)
			if err != nil {
				t.Fatalf("MonthlySummary: %v", err)
			}
			if summary.TotalIncome.Cents != 10000 || summary.TotalExpenses.Cents != 3000 ||
				summary.NetBalance.Cents != 7000 || summary.TransactionCount != 2 {
				t.Errorf("summary = %+v, want 10000/3000/7000/2", summary)
			}

			// Removing the expense restores its contribution.
			if err := svc.DeleteTransaction(ctx, expense.ID, userID); err != nil {
				t.Fatalf("delete expense: %v", err)
			}
			mustBalance(t, svc, account.ID, userID, 10000)

			// The account cannot be deleted while a transaction remains.
			if err := svc.DeleteAccount(ctx, account.ID, userID); !errors.Is(err, core.ErrConflict) {
				t.Errorf("delete with transactions error = %v, want ErrConflict", err)
			}

			if err := svc.DeleteTransaction(ctx, income.ID, userID); err != nil {
				t.Fatalf("delete income: %v", err)
			}
			if err := svc.DeleteAccount(ctx, account.ID, userID); err != nil {
				t.Fatalf("delete account: %v", err)
			}

			// Soft-deleted accounts are invisible and contribute nothing.
			if _, err := svc.GetAccount(ctx, account.ID, userID); !errors.Is(err, core.ErrNotFound) {
				t.Errorf("get deleted account error = %v, want ErrNotFound", err)
			}
			total, err := svc.TotalBalance(ctx, userID)
			if err != nil {
				t.Fatalf("TotalBalance: %v", err)
			}
			if total.Cents != 0 {
				t.Errorf("total balance = %d, want 0", total.Cents)
			}

			restored, err := svc.RestoreAccount(ctx, account.ID, userID)
			if err != nil {
				t.Fatalf("RestoreAccount: %v", err)
			}
			if restored.Balance.Cents != 0 {
				t.Errorf("restored balance = %d, want 0", restored.Balance.Cents)
			}
		})
	}
}

func TestMoveTransactionBetweenAccounts(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	ctx := context.Background()

	src := mustAccount(t, svc, 1, "Source", 0)
	dst := mustAccount(t, svc, 1, "Destination", 0)

	txn, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
		AccountID: src.ID,
		Amount:    core.Money{Cents: 5000},
		Type:      core.Income,
		Date:      core.NewDate(2024, 3, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mustBalance(t, svc, src.ID, 1, 5000)
	mustBalance(t, svc, dst.ID, 1, 0)

	moved, err := svc.UpdateTransaction(ctx, txn.ID, 1, core.TransactionPatch{AccountID: &dst.ID})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.AccountID != dst.ID {
		t.Errorf("moved to account %d, want %d", moved.AccountID, dst.ID)
	}

	// Both sides reconciled in the same commit.
	mustBalance(t, svc, src.ID, 1, 0)
	mustBalance(t, svc, dst.ID, 1, 5000)
}

func TestUpdateTransactionAmountAndType(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	ctx := context.Background()

	account := mustAccount(t, svc, 1, "Main", 0)
	txn, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
		AccountID: account.ID,
		Amount:    core.Money{Cents: 2000},
		Type:      core.Income,
		Date:      core.NewDate(2024, 3, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mustBalance(t, svc, account.ID, 1, 2000)

	newAmount := core.Money{Cents: 4500}
	flipped := core.Expense
	if _, err := svc.UpdateTransaction(ctx, txn.ID, 1, core.TransactionPatch{
		Amount: &newAmount,
		Type:   &flipped,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	mustBalance(t, svc, account.ID, 1, -4500)
}

func TestStructuralAccountUpdate(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	ctx := context.Background()

	account := mustAccount(t, svc, 1, "Main", 0)
	if _, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
		AccountID: account.ID,
		Amount:    core.Money{Cents: 100},
		Type:      core.Income,
		Date:      core.NewDate(2024, 3, 5),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A rename is always fine.
	name := "Renamed"
	if _, err := svc.UpdateAccount(ctx, account.ID, 1, core.AccountPatch{Name: &name}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	// A type change is structural and blocked while transactions exist.
	cash := core.Cash
	if _, err := svc.UpdateAccount(ctx, account.ID, 1, core.AccountPatch{Type: &cash}); !errors.Is(err, core.ErrConflict) {
		t.Errorf("type change error = %v, want ErrConflict", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	ctx := context.Background()

	account := mustAccount(t, svc, 1, "Mine", 0)
	txn, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
		AccountID: account.ID,
		Amount:    core.Money{Cents: 100},
		Type:      core.Income,
		Date:      core.NewDate(2024, 3, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another user sees NotFound everywhere, never a permission hint.
	if _, err := svc.GetAccount(ctx, account.ID, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign get account = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetTransaction(ctx, txn.ID, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign get transaction = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteTransaction(ctx, txn.ID, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign delete transaction = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteAccount(ctx, account.ID, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign delete account = %v, want ErrNotFound", err)
	}

	// A foreign user also cannot book transactions against the account.
	if _, err := svc.CreateTransaction(ctx, 2, core.TransactionSpec{
		AccountID: account.ID,
		Amount:    core.Money{Cents: 100},
		Type:      core.Income,
		Date:      core.NewDate(2024, 3, 5),
	}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign create transaction = %v, want ErrNotFound", err)
	}
}

func TestCategoryChecks(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	ctx := context.Background()

	account := mustAccount(t, svc, 1, "Main", 0)
	food, err := svc.CreateCategory(ctx, "Food", core.Expense, "#dc3545")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	// Expense category on an income transaction is rejected.
	if _, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
		AccountID:  account.ID,
		CategoryID: &food.ID,
		Amount:     core.Money{Cents: 100},
		Type:       core.Income,
		Date:       core.NewDate(2024, 3, 5),
	}); !errors.Is(err, core.ErrCategoryType) {
		t.Errorf("type mismatch error = %v, want ErrCategoryType", err)
	}

	// A dangling category reference is the caller's mistake.
	missing := int64(9999)
	if _, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
		AccountID:  account.ID,
		CategoryID: &missing,
		Amount:     core.Money{Cents: 100},
		Type:       core.Expense,
		Date:       core.NewDate(2024, 3, 5),
	}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("missing category error = %v, want ErrInvalidArgument", err)
	}

	// Matching type passes.
	if _, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
		AccountID:  account.ID,
		CategoryID: &food.ID,
		Amount:     core.Money{Cents: 100},
		Type:       core.Expense,
		Date:       core.NewDate(2024, 3, 5),
	}); err != nil {
		t.Errorf("matching category rejected: %v", err)
	}
}

func TestConcurrentMovesStayReconciled(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	ctx := context.Background()

	a := mustAccount(t, svc, 1, "Origin", 0)
	b := mustAccount(t, svc, 1, "First target", 0)
	c := mustAccount(t, svc, 1, "Second target", 0)
	ids := []int64{a.ID, b.ID, c.ID}

	// Two racing moves of the same transaction serialize on the account
	// locks; whichever loses must re-read the row under lock and reconcile
	// the account the winner moved it to, or that account keeps a phantom
	// contribution.
	for i := 0; i < 25; i++ {
		txn, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
			AccountID: a.ID,
			Amount:    core.Money{Cents: 10000},
			Type:      core.Income,
			Date:      core.NewDate(2024, 3, 5),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		start := make(chan struct{})
		var wg sync.WaitGroup
		for _, target := range []int64{b.ID, c.ID} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := svc.UpdateTransaction(ctx, txn.ID, 1, core.TransactionPatch{AccountID: &target}); err != nil {
					t.Errorf("move to %d: %v", target, err)
				}
			}()
		}
		close(start)
		wg.Wait()

		stored, err := repo.StoredBalances(ctx, ids)
		if err != nil {
			t.Fatalf("StoredBalances: %v", err)
		}
		computed, err := repo.ComputedBalances(ctx, ids)
		if err != nil {
			t.Fatalf("ComputedBalances: %v", err)
		}
		for _, id := range ids {
			if stored[id] != computed[id] {
				t.Fatalf("iteration %d: account %d stored %d cents != computed %d cents",
					i, id, stored[id].Cents, computed[id].Cents)
			}
		}

		if err := svc.DeleteTransaction(ctx, txn.ID, 1); err != nil {
			t.Fatalf("cleanup delete: %v", err)
		}
	}
}

func TestConcurrentTransactionCreates(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, NewMaintainedCache(repo), nil)
	ctx := context.Background()

	account := mustAccount(t, svc, 1, "Main", 0)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateTransaction(ctx, 1, core.TransactionSpec{
				AccountID: account.ID,
				Amount:    core.Money{Cents: 100},
				Type:      core.Income,
				Date:      core.NewDate(2024, 3, 5),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent create: %v", err)
		}
	}

	// Every committed write is reflected; no lost updates.
	mustBalance(t, svc, account.ID, 1, n*100)

	list, err := svc.ListTransactions(ctx, 1, storage.TransactionFilter{AccountID: &account.ID})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != n {
		t.Errorf("got %d transactions, want %d", len(list), n)
	}
}
