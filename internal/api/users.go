package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"creativelens/internal/domain" // Importing domain models
	"creativelens/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// instructorsPopularKey caches the popular instructors listing; settlement
// invalidates it because it moves the student counters it is ranked by
const instructorsPopularKey = "instructors:popular"

// pageParams reads page/page_size query parameters with bounds applied
func pageParams(c *gin.Context) (int, int) {
	page := 1      // Default page number
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		// Convert page to integer
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		// If valid, set page size
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// ListUsersHandler returns all users, paginated; admin only
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []domain.User `json:"users"`       // List of users
			Page       int           `json:"page"`        // Current page
			PageSize   int           `json:"page_size"`   // Page size
			Total      int64         `json:"total"`       // Total number of users
			TotalPages int           `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c) // Pagination parameters
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total user count
		// Fetch total user count
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"}) // Return on error
			return
		}
		var users []domain.User // Slice to hold users
		// Apply offset and limit for pagination
		if err := db.Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		// Prepare final response data
		respData := gin.H{
			"users":       users,      // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, utils.CacheTTL)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// RoleUpdateRequest is the body of a role change request
type RoleUpdateRequest struct {
	Role string `json:"role" binding:"required"` // New role: student, instructor or admin
}

// UpdateRoleHandler changes a user's role; admin only
func UpdateRoleHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse target user id from the path
		if err != nil {
			// If the id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		var req RoleUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || !domain.ValidRole(req.Role) {
			// Reject anything outside the three known roles
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be student, instructor or admin"})
			return
		}
		var user domain.User // Fetch the target user
		if err := db.First(&user, id).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Apply the role change
		if err := db.Model(&user).Update("role", req.Role).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
			return
		}
		// Log the role change
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,  // Target user
			"role":    req.Role, // New role
		}).Info("Role updated")
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
	}
}

// IsAdminHandler reports whether the user behind the path email is an admin.
// The route is guarded by SelfOnlyMiddleware, so users can only query their
// own role flag.
func IsAdminHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", c.Param("email")).First(&user).Error; err != nil {
			// Unknown users are simply not admins
			c.JSON(http.StatusOK, gin.H{"admin": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin": user.Role == domain.RoleAdmin}) // Return the flag
	}
}

// IsInstructorHandler reports whether the user behind the path email is an
// instructor; guarded by SelfOnlyMiddleware like IsAdminHandler
func IsInstructorHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", c.Param("email")).First(&user).Error; err != nil {
			// Unknown users are simply not instructors
			c.JSON(http.StatusOK, gin.H{"instructor": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"instructor": user.Role == domain.RoleInstructor}) // Return the flag
	}
}

// ListInstructorsHandler returns every instructor; public endpoint
func ListInstructorsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var instructors []domain.User // Slice to hold instructors
		// Fetch all users with the instructor role
		if err := db.Where("role = ?", domain.RoleInstructor).Find(&instructors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch instructors"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"instructors": instructors}) // Return the list
	}
}

// PopularInstructorsHandler returns the six instructors with the most
// enrolled students; public endpoint, cached
func PopularInstructorsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()      // Context for Redis operations
		cacheKey := instructorsPopularKey // Cache key for the popular list
		var instructors []domain.User    // Slice to hold instructors
		found, err := utils.GetCache(ctx, rdb, cacheKey, &instructors)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"instructors": instructors, "cached": true})
			return
		}
		// Fetch the top instructors by student count
		if err := db.Where("role = ?", domain.RoleInstructor).
			Order("students desc").
			Limit(6).
			Find(&instructors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch instructors"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, instructors, utils.CacheTTL)       // Cache the list
		c.JSON(http.StatusOK, gin.H{"instructors": instructors, "cached": false}) // Return the list
	}
}
