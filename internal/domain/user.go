package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`            // Primary key
	Email    string `gorm:"unique;not null" json:"email"`    // Unique email used for login
	Password string `gorm:"not null" json:"-"`               // Hashed password, never serialized
	FullName string `gorm:"not null" json:"fullName"`        // Sender's legal name
	Country  string `gorm:"size:2" json:"country"`           // ISO country code the sender registered from
}
