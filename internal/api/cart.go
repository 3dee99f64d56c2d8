package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"creativelens/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// CartAddRequest is the body of an add-to-cart request
type CartAddRequest struct {
	ClassID uint `json:"class_id" binding:"required"` // Class to add
}

// AddToCartHandler puts an approved class into the authenticated user's
// cart. A class can sit in a cart at most once per user.
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email") // Verified email from the token
		var req CartAddRequest        // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var class domain.Class // Fetch the class being added
		if err := db.First(&class, req.ClassID).Error; err != nil {
			// If class not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
			return
		}
		// Only approved classes are purchasable
		if class.Status != domain.StatusApproved {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Class is not open for enrollment"})
			return
		}
		// Create the cart entry; the unique (email, class_id) index rejects duplicates
		item := domain.CartItem{Email: email, ClassID: req.ClassID}
		if err := db.Create(&item).Error; err != nil {
			// Duplicate add is a conflict, not a server failure
			if isDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "Class already in cart"})
				return
			}
			// Anything else is a store failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
			return
		}
		// Return the created entry
		c.JSON(http.StatusCreated, gin.H{"item": item})
	}
}

// GetCartHandler lists the cart of the user named in the path, with class
// details preloaded; guarded by SelfOnlyMiddleware
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []domain.CartItem // Slice to hold cart entries
		// Preload the Class relation so the client gets prices and names
		if err := db.Preload("Class").Where("email = ?", c.Param("email")).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items}) // Return the cart
	}
}

// RemoveCartItemHandler removes one of the authenticated user's own cart
// entries; removing someone else's entry is forbidden
func RemoveCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")          // Verified email from the token
		id, err := strconv.Atoi(c.Param("id")) // Parse cart entry id from the path
		if err != nil {
			// If the id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item id"})
			return
		}
		var item domain.CartItem // Fetch the cart entry
		if err := db.First(&item, id).Error; err != nil {
			// If entry not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		// Only the owner may remove the entry
		if item.Email != email {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		// Delete the entry
		if err := db.Delete(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
	}
}
