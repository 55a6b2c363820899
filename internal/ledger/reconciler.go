package ledger

import (
	"context"

	"finbook/internal/core"
	"finbook/internal/storage"
)

// Reconciler owns the consistency contract between the transaction log and
// an account's observable balance: once a mutating call returns, the balance
// equals the recomputed signed sum. Two strategies satisfy the contract; the
// service treats them interchangeably.
type Reconciler interface {
	// ReconcileTx realigns the account's observable balance inside the
	// mutation's own storage transaction, so log and balance commit or roll
	// back together.
	ReconcileTx(ctx context.Context, tx *storage.Tx, accountID int64) error

	// Balance returns the observable balance for one account.
	Balance(ctx context.Context, accountID int64) (core.Money, error)

	// Balances returns observable balances for a set of accounts.
	Balances(ctx context.Context, accountIDs []int64) (map[int64]core.Money, error)
}

// MaintainedCache persists the balance column and recomputes it from the full
// transaction sum on every mutation. Reads are a plain column fetch.
type MaintainedCache struct {
	repo *storage.SQLiteRepository
}

func NewMaintainedCache(repo *storage.SQLiteRepository) *MaintainedCache {
	return &MaintainedCache{repo: repo}
}

func (m *MaintainedCache) ReconcileTx(ctx context.Context, tx *storage.Tx, accountID int64) error {
	return tx.RecomputeBalance(ctx, accountID)
}

func (m *MaintainedCache) Balance(ctx context.Context, accountID int64) (core.Money, error) {
	balances, err := m.repo.StoredBalances(ctx, []int64{accountID})
	if err != nil {
		return core.Money{}, err
	}
	return balances[accountID], nil
}

func (m *MaintainedCache) Balances(ctx context.Context, accountIDs []int64) (map[int64]core.Money, error) {
	return m.repo.StoredBalances(ctx, accountIDs)
}

// ComputedOnRead never persists a balance; every read sums the transaction
// log. Mutations need no reconcile step, reads cost an indexed aggregate.
type ComputedOnRead struct {
	repo *storage.SQLiteRepository
}

func NewComputedOnRead(repo *storage.SQLiteRepository) *ComputedOnRead {
	return &ComputedOnRead{repo: repo}
}

func (c *ComputedOnRead) ReconcileTx(ctx context.Context, tx *storage.Tx, accountID int64) error {
	// Nothing cached, nothing to realign.
	return nil
}

func (c *ComputedOnRead) Balance(ctx context.Context, accountID int64) (core.Money, error) {
	balances, err := c.repo.ComputedBalances(ctx, []int64{accountID})
	if err != nil {
		return core.Money{}, err
	}
	return balances[accountID], nil
}

func (c *ComputedOnRead) Balances(ctx context.Context, accountIDs []int64) (map[int64]core.Money, error) {
	return c.repo.ComputedBalances(ctx, accountIDs)
}
