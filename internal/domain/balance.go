package domain

// Balance Model
type Balance struct {
	ID     uint    `gorm:"primaryKey"`                                   // Primary key
	UserID uint    `gorm:"not null;uniqueIndex:idx_user_symbol"`         // Foreign key to User
	Symbol string  `gorm:"size:32;not null;uniqueIndex:idx_user_symbol"` // Uppercase asset ticker
	Amount float64 `gorm:"not null;default:0"`                           // Accumulated amount, may be negative
}
