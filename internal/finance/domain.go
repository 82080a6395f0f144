package finance

import "time"

// Category buckets a transaction for reporting.
type Category string

const (
	CategoryRevenue   Category = "Revenue"
	CategoryExpense   Category = "Expense"
	CategoryAsset     Category = "Asset"
	CategoryLiability Category = "Liability"
)

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	switch Category(s) {
	case CategoryRevenue, CategoryExpense, CategoryAsset, CategoryLiability:
		return true
	}
	return false
}

// Status tracks a transaction through its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// ValidStatus reports whether s names a known status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// PaymentMethod names how a transaction settles.
type PaymentMethod string

const (
	PayCash         PaymentMethod = "cash"
	PayCredit       PaymentMethod = "credit"
	PayDebit        PaymentMethod = "debit"
	PayBankTransfer PaymentMethod = "bank_transfer"
	PayCheck        PaymentMethod = "check"
)

// ValidPaymentMethod reports whether s names a known payment method.
func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case PayCash, PayCredit, PayDebit, PayBankTransfer, PayCheck:
		return true
	}
	return false
}

// Transaction is one financial movement. InvoiceNumber is optional but
// unique when present.
type Transaction struct {
	ID            int64
	Date          time.Time
	Vendor        string
	Amount        float64
	Status        Status
	Category      Category
	Description   string
	InvoiceNumber *string
	PaymentMethod PaymentMethod
	CreatedBy     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListFilter narrows transaction queries.
type ListFilter struct {
	Status   string
	Category string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

// CreateTransactionInput carries fields for a new transaction.
// Optional enum fields fall back to their defaults when empty.
type CreateTransactionInput struct {
	Date          *time.Time
	Vendor        string
	Amount        float64
	Status        string
	Category      string
	Description   string
	InvoiceNumber *string
	PaymentMethod string
}

// UpdateTransactionInput is a sparse patch; nil fields stay untouched.
type UpdateTransactionInput struct {
	Date          *time.Time
	Vendor        *string
	Amount        *float64
	Status        *string
	Category      *string
	Description   *string
	InvoiceNumber *string
	PaymentMethod *string
}

// MetricsReport summarises completed totals per category plus the
// pending revenue still outstanding.
type MetricsReport struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	OutstandingAR    float64 `json:"outstandingAR"`
	TotalExpenses    float64 `json:"totalExpenses"`
	NetProfit        float64 `json:"netProfit"`
	TotalAssets      float64 `json:"totalAssets"`
	TotalLiabilities float64 `json:"totalLiabilities"`
}
