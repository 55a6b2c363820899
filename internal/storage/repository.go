package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finbook/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the ledger store: accounts, transactions and categories
// with ownership and referential checks. Balance-affecting writes go through
// Tx so a mutation and its balance recompute commit as one unit.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; funnel everything through one
	// connection so concurrent mutations queue instead of failing busy.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Tx wraps a database transaction. All mutations that must be atomic with a
// balance recompute run through it.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a transaction, rolling back on error.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- Accounts ---

const accountColumns = `id, user_id, name, type, opening_balance_cents, balance_cents, description, created_at, deleted_at`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var (
		a         core.Account
		createdAt string
		deletedAt sql.NullString
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type,
		&a.OpeningBalance.Cents, &a.Balance.Cents, &a.Description,
		&createdAt, &deletedAt)
	if err != nil {
		return core.Account{}, err
	}
	a.CreatedAt = parseTime(createdAt)
	if deletedAt.Valid {
		t := parseTime(deletedAt.String)
		a.DeletedAt = &t
	}
	return a, nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, userID int64, spec core.AccountSpec) (core.Account, error) {
	now := fmtTime(time.Now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, name, type, opening_balance_cents, balance_cents, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, spec.Name, spec.Type, spec.OpeningBalance.Cents, spec.OpeningBalance.Cents,
		spec.Description, now, now)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"account_id", id, "user_id", userID, "type", spec.Type)

	return r.GetAccount(ctx, id, userID)
}

// GetAccount resolves an active (not soft-deleted) account owned by userID.
func (r *SQLiteRepository) GetAccount(ctx context.Context, id, userID int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID int64, includeDeleted bool) ([]core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// RestoreAccount clears the soft-delete tombstone. NotFound when the account
// does not exist, belongs to someone else, or is not currently deleted.
func (r *SQLiteRepository) RestoreAccount(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET deleted_at = NULL, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NOT NULL`,
		fmtTime(time.Now()), id, userID)
	if err != nil {
		return fmt.Errorf("restore account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("restore account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Account restored", "account_id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) CountAccountTransactions(ctx context.Context, accountID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count account transactions: %w", err)
	}
	return n, nil
}

// StoredBalances reads the persisted balance column for the given accounts.
func (r *SQLiteRepository) StoredBalances(ctx context.Context, ids []int64) (map[int64]core.Money, error) {
	if len(ids) == 0 {
		return map[int64]core.Money{}, nil
	}
	query := `SELECT id, balance_cents FROM accounts WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("stored balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[int64]core.Money, len(ids))
	for rows.Next() {
		var id, cents int64
		if err := rows.Scan(&id, &cents); err != nil {
			return nil, fmt.Errorf("scan stored balance: %w", err)
		}
		balances[id] = core.Money{Cents: cents}
	}
	return balances, rows.Err()
}

// ComputedBalances derives balances from the transaction log: opening balance
// plus the signed sum of all transactions per account.
func (r *SQLiteRepository) ComputedBalances(ctx context.Context, ids []int64) (map[int64]core.Money, error) {
	if len(ids) == 0 {
		return map[int64]core.Money{}, nil
	}
	query := `
		SELECT a.id, a.opening_balance_cents + COALESCE(SUM(
			CASE WHEN t.type = 'income' THEN t.amount_cents ELSE -t.amount_cents END), 0)
		FROM accounts a
		LEFT JOIN transactions t ON t.account_id = a.id
		WHERE a.id IN (` + placeholders(len(ids)) + `)
		GROUP BY a.id`
	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("computed balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[int64]core.Money, len(ids))
	for rows.Next() {
		var id, cents int64
		if err := rows.Scan(&id, &cents); err != nil {
			return nil, fmt.Errorf("scan computed balance: %w", err)
		}
		balances[id] = core.Money{Cents: cents}
	}
	return balances, rows.Err()
}

// --- Tx-scoped account mutations ---

// GetActiveAccount resolves an active account owned by userID inside the
// transaction, so ownership holds for the duration of the mutation.
func (t *Tx) GetActiveAccount(ctx context.Context, id, userID int64) (core.Account, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (t *Tx) CountAccountTransactions(ctx context.Context, accountID int64) (int64, error) {
	var n int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count account transactions: %w", err)
	}
	return n, nil
}

func (t *Tx) UpdateAccount(ctx context.Context, id int64, patch core.AccountPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{fmtTime(time.Now())}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *patch.Type)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	args = append(args, id)

	_, err := t.tx.ExecContext(ctx,
		`UPDATE accounts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (t *Tx) SoftDeleteAccount(ctx context.Context, id int64) error {
	now := fmtTime(time.Now())
	_, err := t.tx.ExecContext(ctx,
		`UPDATE accounts SET deleted_at = ?, updated_at = ? WHERE id = ?`, now, now, id)
	if err != nil {
		return fmt.Errorf("soft delete account: %w", err)
	}
	return nil
}

// RecomputeBalance overwrites the stored balance with the full signed sum.
// Always the full sum, never an incremental delta, so a missed edge case
// cannot accumulate drift.
func (t *Tx) RecomputeBalance(ctx context.Context, accountID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance_cents = opening_balance_cents + COALESCE((
			SELECT SUM(CASE WHEN type = 'income' THEN amount_cents ELSE -amount_cents END)
			FROM transactions WHERE account_id = ?), 0),
		    updated_at = ?
		WHERE id = ?`,
		accountID, fmtTime(time.Now()), accountID)
	if err != nil {
		return fmt.Errorf("recompute balance for account %d: %w", accountID, err)
	}
	return nil
}

// --- Transactions ---

const transactionColumns = `id, user_id, account_id, category_id, amount_cents, type, date, note, receipt_ref, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t          core.Transaction
		categoryID sql.NullInt64
		date       string
		createdAt  string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &categoryID,
		&t.Amount.Cents, &t.Type, &date, &t.Note, &t.ReceiptRef, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		t.CategoryID = &id
	}
	d, err := core.ParseDate(date)
	if err != nil {
		// Corrupt storage, not a caller mistake; keep it out of the
		// InvalidArgument taxonomy.
		return core.Transaction{}, fmt.Errorf("transaction %d has unreadable date %q", t.ID, date)
	}
	t.Date = d
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id, userID int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// TransactionFilter narrows ListTransactions; fields combine as a conjunction.
type TransactionFilter struct {
	Type       *core.TransactionType
	AccountID  *int64
	CategoryID *int64
	Start      *core.Date
	End        *core.Date
}

// ListTransactions returns the user's transactions on active accounts,
// newest date first with id as a deterministic tiebreak.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.account_id, t.category_id, t.amount_cents, t.type, t.date, t.note, t.receipt_ref, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id AND a.deleted_at IS NULL
		WHERE t.user_id = ?`
	args := []any{userID}

	if filter.Type != nil {
		query += ` AND t.type = ?`
		args = append(args, *filter.Type)
	}
	if filter.AccountID != nil {
		query += ` AND t.account_id = ?`
		args = append(args, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		query += ` AND t.category_id = ?`
		args = append(args, *filter.CategoryID)
	}
	if filter.Start != nil {
		query += ` AND t.date >= ?`
		args = append(args, filter.Start.String())
	}
	if filter.End != nil {
		query += ` AND t.date <= ?`
		args = append(args, filter.End.String())
	}
	query += ` ORDER BY t.date DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (t *Tx) InsertTransaction(ctx context.Context, userID int64, spec core.TransactionSpec) (int64, error) {
	now := fmtTime(time.Now())
	var categoryID any
	if spec.CategoryID != nil {
		categoryID = *spec.CategoryID
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO transactions (user_id, account_id, category_id, amount_cents, type, date, note, receipt_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, spec.AccountID, categoryID, spec.Amount.Cents, spec.Type,
		spec.Date.String(), spec.Note, spec.ReceiptRef, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	return id, nil
}

func (t *Tx) UpdateTransaction(ctx context.Context, txn core.Transaction) error {
	var categoryID any
	if txn.CategoryID != nil {
		categoryID = *txn.CategoryID
	}
	_, err := t.tx.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, category_id = ?, amount_cents = ?, type = ?, date = ?, note = ?, receipt_ref = ?, updated_at = ?
		WHERE id = ?`,
		txn.AccountID, categoryID, txn.Amount.Cents, txn.Type, txn.Date.String(),
		txn.Note, txn.ReceiptRef, fmtTime(time.Now()), txn.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (t *Tx) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// --- Aggregates ---

// PeriodTotals sums income, expenses and the transaction count over an
// inclusive date range, active accounts only.
func (r *SQLiteRepository) PeriodTotals(ctx context.Context, userID int64, start, end core.Date) (income, expenses core.Money, count int, err error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.type = 'expense' THEN t.amount_cents ELSE 0 END), 0),
			COUNT(t.id)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id AND a.deleted_at IS NULL
		WHERE t.user_id = ? AND t.date >= ? AND t.date <= ?`,
		userID, start.String(), end.String())
	if err = row.Scan(&income.Cents, &expenses.Cents, &count); err != nil {
		return core.Money{}, core.Money{}, 0, fmt.Errorf("period totals: %w", err)
	}
	return income, expenses, count, nil
}

// ExpenseByCategory groups expense transactions over the range by category,
// with uncategorized spending collected into a synthetic bucket. Ordered by
// total descending, category name ascending on ties.
func (r *SQLiteRepository) ExpenseByCategory(ctx context.Context, userID int64, start, end core.Date) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			COALESCE(c.name, 'Uncategorized'),
			COALESCE(c.color, '#6c757d'),
			SUM(t.amount_cents),
			COUNT(t.id)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id AND a.deleted_at IS NULL
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.type = 'expense' AND t.date >= ? AND t.date <= ?
		GROUP BY COALESCE(c.name, 'Uncategorized'), COALESCE(c.color, '#6c757d')
		ORDER BY SUM(t.amount_cents) DESC, COALESCE(c.name, 'Uncategorized') ASC`,
		userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("expense by category: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.CategoryName, &ct.Color, &ct.Total.Cents, &ct.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// --- Categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string, typ core.TransactionType, color string) (core.Category, error) {
	if color == "" {
		color = "#007bff"
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (name, type, color, created_at) VALUES (?, ?, ?, ?)`,
		name, typ, color, fmtTime(time.Now()))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return core.Category{ID: id, Name: name, Type: typ, Color: color}, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, color FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Type, &c.Color)
	if err == sql.ErrNoRows {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns the global taxonomy, income first, then by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, typ *core.TransactionType) ([]core.Category, error) {
	query := `SELECT id, name, type, color FROM categories`
	var args []any
	if typ != nil {
		query += ` WHERE type = ?`
		args = append(args, *typ)
	}
	query += ` ORDER BY type ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, name, color string) (core.Category, error) {
	sets := []string{}
	args := []any{}
	if name != "" {
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if color != "" {
		sets = append(sets, "color = ?")
		args = append(args, color)
	}
	if len(sets) > 0 {
		args = append(args, id)
		res, err := r.db.ExecContext(ctx,
			`UPDATE categories SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return core.Category{}, fmt.Errorf("update category: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
		}
	}
	return r.GetCategory(ctx, id)
}

// DeleteCategory removes a category and detaches it from transactions. The
// transactions themselves are never touched beyond nulling the reference.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.tx.ExecContext(ctx,
			`UPDATE transactions SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("detach category: %w", err)
		}
		res, err := tx.tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// defaultCategories is the bootstrap taxonomy: 5 income + 8 expense.
var defaultCategories = []core.Category{
	{Name: "Salary", Type: core.Income, Color: "#28a745"},
	{Name: "Freelance", Type: core.Income, Color: "#17a2b8"},
	{Name: "Investment", Type: core.Income, Color: "#ffc107"},
	{Name: "Gift", Type: core.Income, Color: "#e83e8c"},
	{Name: "Other Income", Type: core.Income, Color: "#6f42c1"},

	{Name: "Food & Dining", Type: core.Expense, Color: "#dc3545"},
	{Name: "Transportation", Type: core.Expense, Color: "#fd7e14"},
	{Name: "Shopping", Type: core.Expense, Color: "#6610f2"},
	{Name: "Entertainment", Type: core.Expense, Color: "#e83e8c"},
	{Name: "Bills & Utilities", Type: core.Expense, Color: "#20c997"},
	{Name: "Healthcare", Type: core.Expense, Color: "#17a2b8"},
	{Name: "Education", Type: core.Expense, Color: "#ffc107"},
	{Name: "Other Expense", Type: core.Expense, Color: "#6c757d"},
}

// EnsureDefaultCategories seeds the taxonomy when the table is empty.
// Idempotent, guarded by a single existence check, safe to call at every
// process start.
func (r *SQLiteRepository) EnsureDefaultCategories(ctx context.Context) error {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}

	err := r.WithTx(ctx, func(tx *Tx) error {
		now := fmtTime(time.Now())
		for _, c := range defaultCategories {
			if _, err := tx.tx.ExecContext(ctx,
				`INSERT INTO categories (name, type, color, created_at) VALUES (?, ?, ?, ?)`,
				c.Name, c.Type, c.Color, now); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Default categories seeded", "count", len(defaultCategories))
	return nil
}

// --- helpers ---

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
