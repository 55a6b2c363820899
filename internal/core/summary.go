package core

// MonthlySummary aggregates a user's transactions over one calendar month.
type MonthlySummary struct {
	Year             int   `json:"year"`
	Month            int   `json:"month"`
	TotalIncome      Money `json:"totalIncome"`
	TotalExpenses    Money `json:"totalExpenses"`
	NetBalance       Money `json:"netBalance"`
	TransactionCount int   `json:"transactionCount"`
}

// Add element-wise sums another summary into a copy of s. Year/month of the
// receiver are kept, so summing 12 months into a yearly total is well defined.
func (s MonthlySummary) Add(other MonthlySummary) MonthlySummary {
	s.TotalIncome = s.TotalIncome.Add(other.TotalIncome)
	s.TotalExpenses = s.TotalExpenses.Add(other.TotalExpenses)
	s.NetBalance = s.NetBalance.Add(other.NetBalance)
	s.TransactionCount += other.TransactionCount
	return s
}

// CategoryTotal is one bucket of an expense breakdown. Transactions without
// a category fall into the synthetic "Uncategorized" bucket.
type CategoryTotal struct {
	CategoryName     string `json:"categoryName"`
	Color            string `json:"color"`
	Total            Money  `json:"total"`
	TransactionCount int    `json:"transactionCount"`
}

// YearlyOverview is 12 monthly summaries plus their element-wise sum.
type YearlyOverview struct {
	Year         int              `json:"year"`
	MonthlyData  []MonthlySummary `json:"monthlyData"`
	YearlyTotals MonthlySummary   `json:"yearlyTotals"`
}

// Comparison holds month-over-month percentage deltas.
type Comparison struct {
	IncomeChange  float64 `json:"incomeChange"`
	ExpenseChange float64 `json:"expenseChange"`
	BalanceChange float64 `json:"balanceChange"`
}

// Dashboard is the composed current-month view.
type Dashboard struct {
	CurrentMonth  MonthlySummary `json:"currentMonth"`
	PreviousMonth MonthlySummary `json:"previousMonth"`
	TotalBalance  Money          `json:"totalBalance"`
	Accounts      []Account      `json:"accounts"`
	Comparison    Comparison     `json:"comparison"`
}
