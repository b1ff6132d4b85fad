package domain

import "github.com/google/uuid"

// Payout method types a recipient can be paid through
const (
	PayoutBank       = "bank"        // Credited to a bank account
	PayoutCashPickup = "cash_pickup" // Collected at a cash pickup branch
)

// Recipient Model
type Recipient struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`     // Primary key
	UserID        uint      `gorm:"index;not null" json:"-"`                // Owning sender; recipients are never shared
	FullName      string    `gorm:"not null" json:"fullName"`               // Recipient's legal name
	Country       string    `gorm:"size:2;not null" json:"country"`         // ISO country code of the recipient
	Currency      string    `gorm:"size:3;not null" json:"currency"`        // Currency the recipient is paid in
	PayoutType    string    `gorm:"size:20;not null" json:"payoutType"`     // Payout method: bank or cash_pickup
	PayoutDetails string    `gorm:"size:255" json:"payoutDetails"`          // Account number or branch code, masked
	CreatedAt     int64     `gorm:"autoCreateTime:milli" json:"createdAt"`  // Timestamp of creation in milliseconds
}

// PaymentMethod Model
type PaymentMethod struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`    // Primary key
	UserID    uint      `gorm:"index;not null" json:"-"`               // Owning sender
	Type      string    `gorm:"size:20;not null" json:"type"`          // Method type: card or bank_account
	Label     string    `gorm:"size:100" json:"label"`                 // User supplied label, e.g. "Personal Visa"
	LastFour  string    `gorm:"size:4" json:"lastFour"`                // Last four digits for display
	CreatedAt int64     `gorm:"autoCreateTime:milli" json:"createdAt"` // Timestamp of creation in milliseconds
}
