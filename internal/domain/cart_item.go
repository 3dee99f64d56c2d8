package domain

// CartItem Model
type CartItem struct {
	ID      uint   `gorm:"primaryKey" json:"id"`                             // Primary key
	Email   string `gorm:"index:idx_cart_email_class,unique;not null" json:"email"` // Owning user's email
	ClassID uint   `gorm:"index:idx_cart_email_class,unique;not null" json:"class_id"` // Referenced class
	Class   Class  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"class"` // Preloadable class details
}
