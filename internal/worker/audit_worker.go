// Package worker contains the balance audit worker. It consumes reconcile
// events emitted after ledger mutations and independently verifies that the
// stored balance of each touched account still equals the signed sum of its
// transactions, repairing it when the two diverge.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finbook/internal/amqp"
	"finbook/internal/storage"
)

type AuditWorker struct {
	repo *storage.SQLiteRepository
}

func NewAuditWorker(repo *storage.SQLiteRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

// HandleReconcileMessage verifies one account. A missing account is not an
// error: the account may have been hard-removed between publish and consume.
func (w *AuditWorker) HandleReconcileMessage(ctx context.Context, msg *amqp.AccountReconcileMessage) error {
	drifted, err := w.VerifyAccount(ctx, msg.AccountID)
	if err != nil {
		return fmt.Errorf("verify account %d: %w", msg.AccountID, err)
	}
	if drifted {
		slog.WarnContext(ctx, "Balance drift detected and repaired",
			"account_id", msg.AccountID,
			"user_id", msg.UserID)
	}
	return nil
}

// VerifyAccount compares the stored balance against the computed sum and
// rewrites it on mismatch. Returns whether a repair was needed.
func (w *AuditWorker) VerifyAccount(ctx context.Context, accountID int64) (bool, error) {
	stored, err := w.repo.StoredBalances(ctx, []int64{accountID})
	if err != nil {
		return false, err
	}
	storedBalance, ok := stored[accountID]
	if !ok {
		slog.DebugContext(ctx, "Account gone before audit, skipping", "account_id", accountID)
		return false, nil
	}

	computed, err := w.repo.ComputedBalances(ctx, []int64{accountID})
	if err != nil {
		return false, err
	}
	if computed[accountID] == storedBalance {
		return false, nil
	}

	err = w.repo.WithTx(ctx, func(tx *storage.Tx) error {
		return tx.RecomputeBalance(ctx, accountID)
	})
	if err != nil {
		return false, fmt.Errorf("repair balance: %w", err)
	}
	return true, nil
}
