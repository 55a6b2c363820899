package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	BankAccount AccountType = "bank_account"
	Cash        AccountType = "cash"
	CreditCard  AccountType = "credit_card"
	EWallet     AccountType = "e_wallet"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	AccountType     string
	TransactionType string

	// Date is a calendar date without a time-of-day component.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID             int64       `json:"id"`
		UserID         int64       `json:"userId"`
		Name           string      `json:"name"`
		Type           AccountType `json:"type"`
		OpeningBalance Money       `json:"openingBalance"`
		Balance        Money       `json:"balance"`
		Description    string      `json:"description,omitempty"`
		CreatedAt      time.Time   `json:"createdAt"`
		DeletedAt      *time.Time  `json:"deletedAt,omitempty"`
	}

	Transaction struct {
		ID         int64           `json:"id"`
		UserID     int64           `json:"userId"`
		AccountID  int64           `json:"accountId"`
		CategoryID *int64          `json:"categoryId,omitempty"`
		Amount     Money           `json:"amount"`
		Type       TransactionType `json:"type"`
		Date       Date            `json:"date"`
		Note       string          `json:"note,omitempty"`
		ReceiptRef string          `json:"receiptReference,omitempty"`
		CreatedAt  time.Time       `json:"createdAt"`
	}

	Category struct {
		ID    int64           `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Color string          `json:"color"`
	}
)

// Error taxonomy. NotFound deliberately covers both "absent" and "owned by
// someone else" so callers cannot probe other users' data.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")

	ErrInvalidAmount  = fmt.Errorf("%w: invalid amount", ErrInvalidArgument)
	ErrInvalidDate    = fmt.Errorf("%w: invalid date", ErrInvalidArgument)
	ErrEmptyName      = fmt.Errorf("%w: empty name", ErrInvalidArgument)
	ErrBadAccountType = fmt.Errorf("%w: unknown account type", ErrInvalidArgument)
	ErrBadEntryType   = fmt.Errorf("%w: unknown transaction type", ErrInvalidArgument)
	ErrCategoryType   = fmt.Errorf("%w: category type does not match transaction type", ErrInvalidArgument)
)

func (t AccountType) Valid() bool {
	switch t {
	case BankAccount, Cash, CreditCard, EWallet:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Signed returns the transaction's contribution to its account balance:
// positive for income, negative for expense.
func (t Transaction) Signed() Money {
	if t.Type == Income {
		return t.Amount
	}
	return Money{Cents: -t.Amount.Cents}
}

// Deleted reports whether the account carries a soft-delete tombstone.
func (a Account) Deleted() bool {
	return a.DeletedAt != nil
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthRange returns the first and last calendar day of year/month.
func MonthRange(year, month int) (Date, Date) {
	start := NewDate(year, month, 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return start, end
}

// AccountSpec describes a new account.
type AccountSpec struct {
	Name           string
	Type           AccountType
	OpeningBalance Money
	Description    string
}

func (s AccountSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > 100 {
		return fmt.Errorf("%w: name too long (max 100 characters)", ErrInvalidArgument)
	}
	if !s.Type.Valid() {
		return ErrBadAccountType
	}
	return nil
}

// TransactionSpec describes a new transaction.
type TransactionSpec struct {
	AccountID  int64
	CategoryID *int64
	Amount     Money
	Type       TransactionType
	Date       Date
	Note       string
	ReceiptRef string
}

func (s TransactionSpec) Validate() error {
	if s.AccountID <= 0 {
		return fmt.Errorf("%w: missing account id", ErrInvalidArgument)
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if !s.Type.Valid() {
		return ErrBadEntryType
	}
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if len(s.Note) > 500 {
		return fmt.Errorf("%w: note too long (max 500 characters)", ErrInvalidArgument)
	}
	return nil
}

// AccountPatch holds optional account updates. A type change is structural
// and is blocked while the account still has transactions.
type AccountPatch struct {
	Name        *string
	Type        *AccountType
	Description *string
}

func (p AccountPatch) Structural() bool {
	return p.Type != nil
}

func (p AccountPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	if p.Type != nil && !p.Type.Valid() {
		return ErrBadAccountType
	}
	return nil
}

// TransactionPatch holds optional transaction updates. ClearCategory detaches
// the category reference; it wins over CategoryID.
type TransactionPatch struct {
	AccountID     *int64
	CategoryID    *int64
	ClearCategory bool
	Amount        *Money
	Type          *TransactionType
	Date          *Date
	Note          *string
	ReceiptRef    *string
}

func (p TransactionPatch) Validate() error {
	if p.AccountID != nil && *p.AccountID <= 0 {
		return fmt.Errorf("%w: missing account id", ErrInvalidArgument)
	}
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return ErrBadEntryType
	}
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return err
		}
	}
	if p.Note != nil && len(*p.Note) > 500 {
		return fmt.Errorf("%w: note too long (max 500 characters)", ErrInvalidArgument)
	}
	return nil
}

// Apply returns a copy of t with the patch merged in.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.ClearCategory {
		t.CategoryID = nil
	} else if p.CategoryID != nil {
		id := *p.CategoryID
		t.CategoryID = &id
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	if p.ReceiptRef != nil {
		t.ReceiptRef = *p.ReceiptRef
	}
	return t
}
