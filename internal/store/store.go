package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Crayann/swiftbase-backend/internal/domain"
)

// ErrNotFound reports a record that does not exist or is owned by another user
var ErrNotFound = errors.New("record not found")

// ErrNotCancellable reports a cancellation attempt on a transaction that has
// already left the pending state
var ErrNotCancellable = errors.New("transaction is not cancellable")

// Filter narrows a transaction listing
type Filter struct {
	Status domain.TransactionStatus // Empty matches every status
	Limit  int                      // Page size
	Offset int                      // Rows to skip
}

// Page is one page of a transaction listing plus the unpaginated total
type Page struct {
	Items []domain.Transaction // Transactions, newest first
	Total int64                // Total rows matching the filter
}

// Stats aggregates a sender's transfer activity
type Stats struct {
	Counts           map[domain.TransactionStatus]int64 // Transactions per status
	TotalSent        decimal.Decimal                    // Sum of amounts sent across all transfers
	TotalFees        decimal.Decimal                    // Sum of fees across all transfers
	AverageSent      decimal.Decimal                    // Mean amount sent
	EstimatedSavings decimal.Decimal                    // Fees avoided vs the traditional baseline on completed transfers
}

// Store is the durable record of users, recipients, payment methods and
// transactions. Terminal transaction states are immutable: Mark* and cancel
// operations are single conditional updates that refuse to touch a row that
// has already reached completed or failed.
type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	CreateRecipient(ctx context.Context, recipient *domain.Recipient) error
	ListRecipients(ctx context.Context, userID uint) ([]domain.Recipient, error)
	GetRecipient(ctx context.Context, id uuid.UUID, userID uint) (*domain.Recipient, error)
	DeleteRecipient(ctx context.Context, id uuid.UUID, userID uint) error

	CreatePaymentMethod(ctx context.Context, method *domain.PaymentMethod) error
	ListPaymentMethods(ctx context.Context, userID uint) ([]domain.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id uuid.UUID, userID uint) (*domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id uuid.UUID, userID uint) error

	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID, userID uint) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID uint, filter Filter) (Page, error)
	// MarkCompleted atomically moves a processing transaction to completed,
	// setting the realized amount, settlement reference and completion time.
	MarkCompleted(ctx context.Context, id uuid.UUID, amountReceived decimal.Decimal, settlementRef string, completedAt time.Time) error
	// MarkFailed atomically moves a processing transaction to failed with a
	// diagnostic note; completed_at is left untouched.
	MarkFailed(ctx context.Context, id uuid.UUID, notes string) error
	// CancelIfPending compare-and-swaps pending to failed. On refusal it
	// returns the current status together with ErrNotCancellable.
	CancelIfPending(ctx context.Context, id uuid.UUID, userID uint) (domain.TransactionStatus, error)
	Stats(ctx context.Context, userID uint) (Stats, error)
}
