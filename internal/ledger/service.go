// Package ledger implements the balance consistency engine: every mutation
// of the transaction log reconciles the affected account balances before the
// call returns, under a per-account mutual exclusion scope.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/storage"
)

// Service orchestrates ledger mutations across storage, the reconciler and
// the optional event stream.
type Service struct {
	repo       *storage.SQLiteRepository
	reconciler Reconciler
	events     *amqp.Client // nil when eventing is disabled

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewService(repo *storage.SQLiteRepository, reconciler Reconciler, events *amqp.Client) *Service {
	return &Service{
		repo:       repo,
		reconciler: reconciler,
		events:     events,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// lockAccounts serializes mutations per account. IDs are deduplicated and
// acquired in ascending order so a two-account move cannot deadlock against
// the reverse move.
func (s *Service) lockAccounts(ids ...int64) func() {
	seen := make(map[int64]bool, len(ids))
	ordered := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	acquired := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		s.mu.Lock()
		lock, ok := s.locks[id]
		if !ok {
			lock = &sync.Mutex{}
			s.locks[id] = lock
		}
		s.mu.Unlock()
		lock.Lock()
		acquired = append(acquired, lock)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}

// lockTransaction resolves a transaction and acquires the per-account locks
// covering it, plus any accounts derived from it via extra. The lock set is
// chosen from a read taken before the locks are held, so the row is re-read
// after acquisition; when a concurrent mutation moved it to another account
// in between, the locks are released and taken again for the new set. The
// returned transaction is the state under lock.
func (s *Service) lockTransaction(ctx context.Context, id, userID int64, extra func(core.Transaction) []int64) (core.Transaction, func(), error) {
	for {
		txn, err := s.repo.GetTransaction(ctx, id, userID)
		if err != nil {
			return core.Transaction{}, nil, err
		}

		ids := []int64{txn.AccountID}
		if extra != nil {
			ids = append(ids, extra(txn)...)
		}
		unlock := s.lockAccounts(ids...)

		current, err := s.repo.GetTransaction(ctx, id, userID)
		if err != nil {
			unlock()
			return core.Transaction{}, nil, err
		}
		if current.AccountID == txn.AccountID {
			return current, unlock, nil
		}
		unlock()
	}
}

// --- Accounts ---

func (s *Service) CreateAccount(ctx context.Context, userID int64, spec core.AccountSpec) (core.Account, error) {
	if err := spec.Validate(); err != nil {
		return core.Account{}, err
	}
	return s.repo.CreateAccount(ctx, userID, spec)
}

// GetAccount returns an active account with its observable balance.
func (s *Service) GetAccount(ctx context.Context, id, userID int64) (core.Account, error) {
	account, err := s.repo.GetAccount(ctx, id, userID)
	if err != nil {
		return core.Account{}, err
	}
	balance, err := s.reconciler.Balance(ctx, account.ID)
	if err != nil {
		return core.Account{}, fmt.Errorf("balance for account %d: %w", id, err)
	}
	account.Balance = balance
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context, userID int64, includeDeleted bool) ([]core.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx, userID, includeDeleted)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	balances, err := s.reconciler.Balances(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("account balances: %w", err)
	}
	for i := range accounts {
		accounts[i].Balance = balances[accounts[i].ID]
	}
	return accounts, nil
}

// TotalBalance sums observable balances across the user's active accounts.
// Soft-deleted accounts never contribute.
func (s *Service) TotalBalance(ctx context.Context, userID int64) (core.Money, error) {
	accounts, err := s.ListAccounts(ctx, userID, false)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total, nil
}

// UpdateAccount applies a patch. Structural changes (account type) are
// blocked while transactions exist; remove them first.
func (s *Service) UpdateAccount(ctx context.Context, id, userID int64, patch core.AccountPatch) (core.Account, error) {
	if err := patch.Validate(); err != nil {
		return core.Account{}, err
	}

	unlock := s.lockAccounts(id)
	defer unlock()

	err := s.repo.WithTx(ctx, func(tx *storage.Tx) error {
		if _, err := tx.GetActiveAccount(ctx, id, userID); err != nil {
			return err
		}
		if patch.Structural() {
			n, err := tx.CountAccountTransactions(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: account has %d transactions, remove them first", core.ErrConflict, n)
			}
		}
		return tx.UpdateAccount(ctx, id, patch)
	})
	if err != nil {
		return core.Account{}, err
	}
	return s.GetAccount(ctx, id, userID)
}

// DeleteAccount soft-deletes an account. The zero-transactions guard applies:
// an account still referenced by transactions yields Conflict.
func (s *Service) DeleteAccount(ctx context.Context, id, userID int64) error {
	unlock := s.lockAccounts(id)
	defer unlock()

	return s.repo.WithTx(ctx, func(tx *storage.Tx) error {
		if _, err := tx.GetActiveAccount(ctx, id, userID); err != nil {
			return err
		}
		n, err := tx.CountAccountTransactions(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: account has %d transactions, remove them first", core.ErrConflict, n)
		}
		if err := tx.SoftDeleteAccount(ctx, id); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Account soft-deleted", "account_id", id, "user_id", userID)
		return nil
	})
}

func (s *Service) RestoreAccount(ctx context.Context, id, userID int64) (core.Account, error) {
	if err := s.repo.RestoreAccount(ctx, id, userID); err != nil {
		return core.Account{}, err
	}
	return s.GetAccount(ctx, id, userID)
}

// --- Transactions ---

// CreateTransaction validates, persists and reconciles in one atomic unit.
// The account lock is held across persist and recompute, so a concurrent
// mutation of the same account can never observe a half-applied balance.
func (s *Service) CreateTransaction(ctx context.Context, userID int64, spec core.TransactionSpec) (core.Transaction, error) {
	if err := spec.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, spec.CategoryID, spec.Type); err != nil {
		return core.Transaction{}, err
	}

	unlock := s.lockAccounts(spec.AccountID)
	defer unlock()

	var id int64
	err := s.repo.WithTx(ctx, func(tx *storage.Tx) error {
		if _, err := tx.GetActiveAccount(ctx, spec.AccountID, userID); err != nil {
			return err
		}
		var err error
		id, err = tx.InsertTransaction(ctx, userID, spec)
		if err != nil {
			return err
		}
		return s.reconciler.ReconcileTx(ctx, tx, spec.AccountID)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", id,
		"account_id", spec.AccountID,
		"user_id", userID,
		"type", spec.Type,
		"amount_cents", spec.Amount.Cents)

	s.publishReconcile(ctx, userID, spec.AccountID)
	return s.repo.GetTransaction(ctx, id, userID)
}

// UpdateTransaction merges the patch and reconciles every affected account:
// both the previous and the new one when the transaction moves. The merge is
// built from the row as read under the account locks, never from an earlier
// snapshot, so two racing updates of the same transaction cannot lose each
// other's changes or leave a vacated account unreconciled.
func (s *Service) UpdateTransaction(ctx context.Context, id, userID int64, patch core.TransactionPatch) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

	existing, unlock, err := s.lockTransaction(ctx, id, userID, func(t core.Transaction) []int64 {
		return []int64{patch.Apply(t).AccountID}
	})
	if err != nil {
		return core.Transaction{}, err
	}
	defer unlock()

	merged := patch.Apply(existing)
	if err := merged.Date.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := merged.Amount.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, merged.CategoryID, merged.Type); err != nil {
		return core.Transaction{}, err
	}

	err = s.repo.WithTx(ctx, func(tx *storage.Tx) error {
		if merged.AccountID != existing.AccountID {
			if _, err := tx.GetActiveAccount(ctx, merged.AccountID, userID); err != nil {
				return err
			}
		}
		if err := tx.UpdateTransaction(ctx, merged); err != nil {
			return err
		}
		if err := s.reconciler.ReconcileTx(ctx, tx, existing.AccountID); err != nil {
			return err
		}
		if merged.AccountID != existing.AccountID {
			return s.reconciler.ReconcileTx(ctx, tx, merged.AccountID)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated",
		"transaction_id", id,
		"user_id", userID,
		"account_id", merged.AccountID,
		"previous_account_id", existing.AccountID)

	s.publishReconcile(ctx, userID, existing.AccountID, merged.AccountID)
	return s.repo.GetTransaction(ctx, id, userID)
}

func (s *Service) DeleteTransaction(ctx context.Context, id, userID int64) error {
	existing, unlock, err := s.lockTransaction(ctx, id, userID, nil)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.repo.WithTx(ctx, func(tx *storage.Tx) error {
		if err := tx.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		return s.reconciler.ReconcileTx(ctx, tx, existing.AccountID)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted",
		"transaction_id", id, "account_id", existing.AccountID, "user_id", userID)

	s.publishReconcile(ctx, userID, existing.AccountID)
	return nil
}

func (s *Service) GetTransaction(ctx context.Context, id, userID int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id, userID)
}

func (s *Service) ListTransactions(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, filter)
}

// --- Categories ---

func (s *Service) CreateCategory(ctx context.Context, name string, typ core.TransactionType, color string) (core.Category, error) {
	if name == "" {
		return core.Category{}, core.ErrEmptyName
	}
	if !typ.Valid() {
		return core.Category{}, core.ErrBadEntryType
	}
	return s.repo.CreateCategory(ctx, name, typ, color)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, typ *core.TransactionType) ([]core.Category, error) {
	return s.repo.ListCategories(ctx, typ)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name, color string) (core.Category, error) {
	return s.repo.UpdateCategory(ctx, id, name, color)
}

// DeleteCategory removes a category from the taxonomy; transactions keep
// their history and merely lose the reference.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

// checkCategory enforces that an assigned category exists and its type
// matches the transaction type. A dangling reference is the caller's
// mistake, not a missing entity, hence InvalidArgument.
func (s *Service) checkCategory(ctx context.Context, categoryID *int64, typ core.TransactionType) error {
	if categoryID == nil {
		return nil
	}
	category, err := s.repo.GetCategory(ctx, *categoryID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: category %d does not exist", core.ErrInvalidArgument, *categoryID)
	}
	if err != nil {
		return err
	}
	if category.Type != typ {
		return fmt.Errorf("%w: category %q is %s", core.ErrCategoryType, category.Name, category.Type)
	}
	return nil
}

func (s *Service) publishReconcile(ctx context.Context, userID int64, accountIDs ...int64) {
	if s.events == nil {
		return
	}
	seen := make(map[int64]bool, len(accountIDs))
	for _, id := range accountIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := s.events.PublishAccountReconcile(ctx, userID, id); err != nil {
			// Events are advisory; the mutation already committed.
			slog.ErrorContext(ctx, "Failed to publish reconcile event",
				"account_id", id, "error", err)
		}
	}
}
