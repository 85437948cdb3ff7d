package domain

import "time"

// MaxNameLength is the size of the name column
const MaxNameLength = 100

// User Model
type User struct {
	ID         uint      `gorm:"primaryKey"`                                             // Primary key
	Name       string    `gorm:"size:100;uniqueIndex;not null"`                          // Unique user name
	APIKeyHash string    `gorm:"size:100;uniqueIndex;not null" json:"-"`                 // Bcrypt hash of the issued API key
	CreatedAt  time.Time `gorm:"autoCreateTime"`                                         // Creation timestamp
	Balances   []Balance `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // One-to-many relationship with Balance
}
