package finance

import (
	"time"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

type createTransactionRequest struct {
	Date          *time.Time `json:"date"`
	Vendor        string     `json:"vendor" validate:"required"`
	Amount        float64    `json:"amount" validate:"gte=0"`
	Status        string     `json:"status" validate:"omitempty,oneof=pending completed cancelled failed"`
	Category      string     `json:"category" validate:"required,oneof=Revenue Expense Asset Liability"`
	Description   string     `json:"description"`
	InvoiceNumber *string    `json:"invoiceNumber"`
	PaymentMethod string     `json:"paymentMethod" validate:"omitempty,oneof=cash credit debit bank_transfer check"`
}

type updateTransactionRequest struct {
	Date          *time.Time `json:"date"`
	Vendor        *string    `json:"vendor"`
	Amount        *float64   `json:"amount" validate:"omitempty,gte=0"`
	Status        *string    `json:"status" validate:"omitempty,oneof=pending completed cancelled failed"`
	Category      *string    `json:"category" validate:"omitempty,oneof=Revenue Expense Asset Liability"`
	Description   *string    `json:"description"`
	InvoiceNumber *string    `json:"invoiceNumber"`
	PaymentMethod *string    `json:"paymentMethod" validate:"omitempty,oneof=cash credit debit bank_transfer check"`
}

// TransactionView is the JSON shape of a transaction.
type TransactionView struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	Vendor        string    `json:"vendor"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	Category      string    `json:"category"`
	Description   string    `json:"description,omitempty"`
	InvoiceNumber *string   `json:"invoiceNumber,omitempty"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedBy     int64     `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewTransactionView converts a domain transaction for responses.
func NewTransactionView(t Transaction) TransactionView {
	return TransactionView{
		ID:            t.ID,
		Date:          t.Date,
		Vendor:        t.Vendor,
		Amount:        t.Amount,
		Status:        string(t.Status),
		Category:      string(t.Category),
		Description:   t.Description,
		InvoiceNumber: t.InvoiceNumber,
		PaymentMethod: string(t.PaymentMethod),
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func newTransactionViews(transactions []Transaction) []TransactionView {
	views := make([]TransactionView, 0, len(transactions))
	for _, t := range transactions {
		views = append(views, NewTransactionView(t))
	}
	return views
}

type listResponse struct {
	Transactions []TransactionView `json:"transactions"`
	Pagination   shared.Pagination `json:"pagination"`
}
