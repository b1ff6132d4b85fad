package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus enumerates the transfer state machine
type TransactionStatus string

// Transfer states. pending is a staging state reachable only before the
// pipeline is dispatched; processing is the state every created transfer
// starts in; completed and failed are terminal and never change again.
const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
)

// Terminal reports whether the status can never change again.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Route types a transfer can be priced and executed through
const (
	RouteXRPLDirect   = "xrpl_direct"   // Settled over the XRP Ledger, lowest fee
	RouteCompetitor   = "competitor"    // Mid-tier remittance competitor
	RouteBankTransfer = "bank_transfer" // Traditional correspondent banking rail
)

// Transaction Model
type Transaction struct {
	ID               uuid.UUID           `gorm:"type:char(36);primaryKey" json:"id"`              // Primary key, assigned at creation
	UserID           uint                `gorm:"index;not null" json:"-"`                         // Sender
	RecipientID      uuid.UUID           `gorm:"type:char(36);not null" json:"recipientId"`       // Recipient, owned by the same sender
	PaymentMethodID  uuid.UUID           `gorm:"type:char(36);not null" json:"paymentMethodId"`   // Funding payment method, owned by the same sender
	AmountSent       decimal.Decimal     `gorm:"type:decimal(12,2)" json:"amountSent"`            // Amount debited from the sender
	CurrencySent     string              `gorm:"size:3;not null" json:"currencySent"`             // Currency the sender pays in
	AmountReceived   decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"amountReceived"`        // Realized payout amount, null until settlement completes
	CurrencyReceived string              `gorm:"size:3;not null" json:"currencyReceived"`         // Currency the recipient is paid in
	ExchangeRate     decimal.Decimal     `gorm:"type:decimal(16,6)" json:"exchangeRate"`          // Effective rate fixed at creation, never recomputed
	Fee              decimal.Decimal     `gorm:"type:decimal(10,2)" json:"fee"`                   // Fee fixed at creation, never recomputed
	RouteType        string              `gorm:"size:30;not null" json:"routeType"`               // Route the transfer was priced on
	SettlementRef    *string             `gorm:"size:64" json:"settlementRef"`                    // Ledger reference, set only on successful settlement
	Status           TransactionStatus   `gorm:"size:20;index;not null" json:"status"`            // Current state, see state machine above
	Notes            *string             `gorm:"type:text" json:"notes"`                          // User annotation or machine written failure reason
	CreatedAt        time.Time           `json:"createdAt"`                                       // Set at creation, immutable
	CompletedAt      *time.Time          `json:"completedAt"`                                     // Set exactly once on completion; stays null on failure
}
