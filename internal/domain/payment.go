package domain

// Payment Model. Rows are write-once: settlement inserts them and nothing
// ever updates or deletes them. The unique index on CartItemID is what makes
// a retried settlement safe - the second insert fails instead of double
// charging.
type Payment struct {
	ID              uint    `gorm:"primaryKey" json:"id"`                   // Primary key
	Email           string  `gorm:"index;not null" json:"email"`            // Paying user's email
	Amount          float64 `gorm:"not null" json:"amount"`                 // Charged amount
	CartItemID      uint    `gorm:"uniqueIndex;not null" json:"cart_item_id"` // Cart entry consumed by this payment
	ClassID         uint    `gorm:"index;not null" json:"class_id"`         // Purchased class
	InstructorEmail string  `gorm:"index" json:"instructor_email"`          // Instructor owning the class at settlement time
	CreatedAt       int64   `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of settlement in milliseconds
}
