package domain

// Roles a user can hold; role changes are admin-only
const (
	RoleStudent    = "student"    // Default role on registration
	RoleInstructor = "instructor" // Can publish classes
	RoleAdmin      = "admin"      // Can approve classes and manage roles
)

// ValidRole reports whether role is one of the three known roles
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleInstructor || role == RoleAdmin
}

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`               // Primary key
	Name     string `json:"name"`                               // Display name
	Email    string `gorm:"uniqueIndex;not null" json:"email"`  // Unique email, identity key
	Role     string `gorm:"default:student" json:"role"`        // Role: student, instructor or admin
	Students int    `gorm:"not null;default:0" json:"students"` // Enrolled-student counter (instructors only)
}
