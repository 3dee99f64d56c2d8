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

// Cache keys for the public class listings; every class mutation and every
// settlement invalidates both
const (
	classesApprovedKey = "classes:approved" // Approved classes listing
	classesPopularKey  = "classes:popular"  // Popular classes listing
)

// InvalidateClassCaches drops the cached public class listings
func InvalidateClassCaches(ctx context.Context, rdb *redis.Client) {
	_ = utils.DeleteCache(ctx, rdb, classesApprovedKey) // Invalidate approved listing
	_ = utils.DeleteCache(ctx, rdb, classesPopularKey)  // Invalidate popular listing
}

// ClassRequest is the body of a class creation request
type ClassRequest struct {
	Name  string  `json:"name" binding:"required"`        // Class title
	Image string  `json:"image"`                          // Cover image URL
	Price float64 `json:"price" binding:"required,gte=0"` // Enrollment price
	Seats int     `json:"seats" binding:"required,gt=0"`  // Seat capacity
}

// CreateClassHandler lets an instructor submit a new class; it starts in
// pending status until an admin reviews it. The owning instructor comes
// from the verified token, never from the body.
func CreateClassHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email") // Verified instructor email from the token
		var req ClassRequest          // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var instructor domain.User // Fetch the instructor for their display name
		if err := db.Where("email = ?", email).First(&instructor).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Instructor not found"})
			return
		}
		// Build the pending class with a full set of seats
		class := domain.Class{
			Name:            req.Name,             // Class title
			Image:           req.Image,            // Cover image URL
			InstructorName:  instructor.Name,      // Owner's display name
			InstructorEmail: email,                // Owner's email from the token
			Price:           req.Price,            // Enrollment price
			Seats:           req.Seats,            // Seat capacity
			SeatsLeft:       req.Seats,            // All seats available at creation
			Status:          domain.StatusPending, // Awaiting admin review
		}
		// Save the new class
		if err := db.Create(&class).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create class"})
			return
		}
		// Log the class submission
		logrus.WithFields(logrus.Fields{
			"class_id":   class.ID, // New class ID
			"instructor": email,    // Owning instructor
		}).Info("Class submitted")
		InvalidateClassCaches(context.Background(), rdb) // Drop stale listings
		c.JSON(http.StatusCreated, gin.H{"class": class})
	}
}

// ListApprovedClassesHandler returns every approved class; public, cached
func ListApprovedClassesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		var classes []domain.Class  // Slice to hold classes
		found, err := utils.GetCache(ctx, rdb, classesApprovedKey, &classes)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"classes": classes, "cached": true})
			return
		}
		// Fetch approved classes from the database
		if err := db.Where("status = ?", domain.StatusApproved).Find(&classes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classes"})
			return
		}
		_ = utils.SetCache(ctx, rdb, classesApprovedKey, classes, utils.CacheTTL) // Cache the listing
		c.JSON(http.StatusOK, gin.H{"classes": classes, "cached": false})         // Return the list
	}
}

// PopularClassesHandler returns the six approved classes with the highest
// enrollment; public, cached
func PopularClassesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		var classes []domain.Class  // Slice to hold classes
		found, err := utils.GetCache(ctx, rdb, classesPopularKey, &classes)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"classes": classes, "cached": true})
			return
		}
		// Fetch the most enrolled approved classes
		if err := db.Where("status = ?", domain.StatusApproved).
			Order("enrolled desc").
			Limit(6).
			Find(&classes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classes"})
			return
		}
		_ = utils.SetCache(ctx, rdb, classesPopularKey, classes, utils.CacheTTL) // Cache the listing
		c.JSON(http.StatusOK, gin.H{"classes": classes, "cached": false})        // Return the list
	}
}

// MyClassesHandler returns all classes owned by the instructor named in the
// path, any status; guarded by SelfOnly + RoleRequired(instructor)
func MyClassesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var classes []domain.Class // Slice to hold classes
		// Fetch every class owned by the instructor
		if err := db.Where("instructor_email = ?", c.Param("email")).Find(&classes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"classes": classes}) // Return the list
	}
}

// ListAllClassesHandler returns every class regardless of status; admin only
func ListAllClassesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var classes []domain.Class // Slice to hold classes
		// Fetch all classes for review
		if err := db.Find(&classes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"classes": classes}) // Return the list
	}
}

// StatusUpdateRequest is the body of a class review decision
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"` // approved or rejected
}

// UpdateClassStatusHandler approves or rejects a pending class; admin only
func UpdateClassStatusHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse class id from the path
		if err != nil {
			// If the id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class id"})
			return
		}
		var req StatusUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil ||
			(req.Status != domain.StatusApproved && req.Status != domain.StatusRejected) {
			// Review decisions can only approve or reject
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be approved or rejected"})
			return
		}
		var class domain.Class // Fetch the class under review
		if err := db.First(&class, id).Error; err != nil {
			// If class not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
			return
		}
		// Apply the review decision
		if err := db.Model(&class).Update("status", req.Status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
			return
		}
		// Log the review decision
		logrus.WithFields(logrus.Fields{
			"class_id": class.ID,   // Reviewed class
			"status":   req.Status, // Decision
		}).Info("Class reviewed")
		InvalidateClassCaches(context.Background(), rdb) // Drop stale listings
		c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
	}
}

// FeedbackRequest is the body of a review feedback note
type FeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"` // Review feedback text
}

// UpdateClassFeedbackHandler attaches review feedback to a class; admin only
func UpdateClassFeedbackHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse class id from the path
		if err != nil {
			// If the id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class id"})
			return
		}
		var req FeedbackRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var class domain.Class // Fetch the class under review
		if err := db.First(&class, id).Error; err != nil {
			// If class not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
			return
		}
		// Attach the feedback note
		if err := db.Model(&class).Update("feedback", req.Feedback).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update feedback"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Feedback updated"})
	}
}
