package api

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"creativelens/internal/domain" // Importing domain models
	"creativelens/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// TokenRequest is the body of a token issuance request. Identity is
// established by the upstream auth provider before the client calls this
// endpoint; the backend only mints the bearer token it will verify later.
type TokenRequest struct {
	Email string `json:"email" binding:"required,email"` // Subject's email
}

// AuthResponse carries the issued token
type AuthResponse struct {
	Token string `json:"token"` // Signed bearer token, valid for one hour
}

// RegisterRequest is the body of a registration request
type RegisterRequest struct {
	Name  string `json:"name"`                           // Display name
	Email string `json:"email" binding:"required,email"` // Email, the identity key
}

// isDuplicateKey reports whether err is a translated unique-index violation;
// the gorm connection is opened with TranslateError so MySQL 1062 arrives as
// gorm.ErrDuplicatedKey. Only this case may be answered as a duplicate - any
// other create failure is a real server error.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// TokenHandler issues a signed one-hour bearer token for the given email
func TokenHandler(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Generate the JWT token
		token, err := utils.GenerateJWT(strings.ToLower(req.Email), jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// RegisterHandler creates a user on first registration. Registration is
// idempotent: posting an email that already exists is a no-op answered with
// inserted=false rather than an error. New users always start as students;
// only an admin can change a role afterwards.
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		email := strings.ToLower(req.Email) // Lowercase email to ensure uniqueness
		var existing domain.User
		// Check whether the email is already registered
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			// Already registered: signal the no-op distinctly from creation
			c.JSON(http.StatusOK, gin.H{"inserted": false})
			return
		}
		// Create the user with the default student role
		user := domain.User{Name: req.Name, Email: email, Role: domain.RoleStudent}
		if err := db.Create(&user).Error; err != nil {
			// A concurrent registration may have won the race on the unique index
			if isDuplicateKey(err) {
				c.JSON(http.StatusOK, gin.H{"inserted": false})
				return
			}
			// Anything else is a store failure, not a duplicate
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // New user ID
			"email":   email,   // Registered email
		}).Info("User registered")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"inserted": true, "user": user})
	}
}
