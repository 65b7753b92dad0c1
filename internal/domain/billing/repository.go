package billing

import (
	"context"
	"time"
)

// TransactionRepository persists transaction records. GetOrCreate must be
// backed by a uniqueness constraint on the basket key so two concurrent
// checkout completions for the same basket cannot both insert.
type TransactionRepository interface {
	// GetOrCreate returns the existing record for the basket or creates a
	// new one in the initial state.
	GetOrCreate(ctx context.Context, basketID int64) (*TransactionRecord, error)
	// FindByBasket returns the record for a basket, ErrRecordNotFound when
	// absent.
	FindByBasket(ctx context.Context, basketID int64) (*TransactionRecord, error)
	// Save persists the record's request, response and state together.
	Save(ctx context.Context, record *TransactionRecord) error
	// FindRetryable returns records in a retryable state created at or
	// before the given instant, ordered by creation time.
	FindRetryable(ctx context.Context, createdBefore time.Time) ([]*TransactionRecord, error)
}

// OrderRepository reads completed orders from the storefront's data.
type OrderRepository interface {
	// FindByBasket returns the order placed from a basket,
	// ErrOrderNotFound when checkout has not completed.
	FindByBasket(ctx context.Context, basketID int64) (*Order, error)
	// FindByNumber returns the order with the given order number.
	FindByNumber(ctx context.Context, number string) (*Order, error)
}

// BillingProfileRepository persists the billing details a buyer supplies.
type BillingProfileRepository interface {
	// FindByBasket returns the profile for a basket, ErrProfileNotFound
	// when the buyer supplied none.
	FindByBasket(ctx context.Context, basketID int64) (*BillingProfile, error)
	// Save inserts or updates the basket's profile.
	Save(ctx context.Context, profile *BillingProfile) error
}

// SendResult is the raw HTTP outcome of a transaction submission; the
// domain interprets it, the transport does not.
type SendResult struct {
	StatusCode int
	Body       []byte
}

// FinancialManager is the port to the external receipt-issuing service.
type FinancialManager interface {
	// Enabled reports whether the partner has an integration configured.
	// False is a feature flag, not an error.
	Enabled(partner string) bool
	// SendTransaction posts the payload and returns the raw HTTP outcome.
	// Returns ErrMissingSetting when the partner entry is incomplete and
	// ErrNotConfigured when there is no entry at all.
	SendTransaction(ctx context.Context, partner string, payload *TransactionPayload) (*SendResult, error)
	// ReceiptLink fetches the receipt link for a transaction id. Empty
	// string means not found.
	ReceiptLink(ctx context.Context, partner, transactionID string) (string, error)
}
