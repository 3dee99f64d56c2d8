package domain

// Lifecycle states of a class; only admins move a class out of pending
const (
	StatusPending  = "pending"  // Awaiting admin review
	StatusApproved = "approved" // Visible and purchasable
	StatusRejected = "rejected" // Hidden, feedback explains why
)

// Class Model
type Class struct {
	ID              uint    `gorm:"primaryKey" json:"id"`            // Primary key
	Name            string  `gorm:"not null" json:"name"`            // Class title
	Image           string  `json:"image"`                           // Cover image URL
	InstructorName  string  `json:"instructor_name"`                 // Owning instructor's display name
	InstructorEmail string  `gorm:"index;not null" json:"instructor_email"` // Owning instructor's email
	Price           float64 `gorm:"not null" json:"price"`           // Enrollment price
	Seats           int     `gorm:"not null" json:"seats"`           // Seat capacity
	SeatsLeft       int     `gorm:"not null" json:"seats_left"`      // Remaining seats, decremented by settlement only
	Enrolled        int     `gorm:"not null;default:0" json:"enrolled"` // Enrollment counter, incremented by settlement only
	Status          string  `gorm:"default:pending" json:"status"`   // Lifecycle status: pending, approved or rejected
	Feedback        string  `json:"feedback"`                        // Admin review feedback
}
