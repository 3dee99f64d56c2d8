package api

import (
	"context"  // Context for deadlines and Redis operations
	"errors"   // Sentinel error matching
	"math"     // Rounding amounts to cents
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"creativelens/internal/domain"     // Importing domain models
	"creativelens/internal/payments"   // Payment gateway collaborator
	"creativelens/internal/settlement" // Settlement workflow
	"creativelens/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// settleTimeout is the server-imposed deadline on a settlement attempt
const settleTimeout = 5 * time.Second

// IntentRequest is the body of a payment intent request
type IntentRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"` // Amount to authorize
}

// CreatePaymentIntentHandler asks the payment gateway to authorize the
// amount and hands the opaque client secret back to the frontend
func CreatePaymentIntentHandler(gateway payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IntentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		cents := int64(math.Round(req.Price * 100)) // Gateway amounts are in cents
		// Create the intent under the request's context
		secret, err := gateway.CreateIntent(c.Request.Context(), cents, "usd")
		if err != nil {
			// If the gateway refused, return bad gateway
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment intent"})
			return
		}
		// Return the client secret
		c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
	}
}

// settlementCacheKeys lists every cache entry a successful settlement makes
// stale: the public class listings (enrollment counters moved), the popular
// instructors ranking (student counter moved) and the payer's payment
// history (simple version: delete first 5 pages)
func settlementCacheKeys(email string) []string {
	keys := []string{classesApprovedKey, classesPopularKey, instructorsPopularKey}
	txPrefix := "payments:user:" + email // Payment history prefix for the payer
	for i := 1; i <= 5; i++ {
		keys = append(keys, txPrefix+":page:"+strconv.Itoa(i)+":size:20")
	}
	return keys
}

// PaymentRequest is the body of a settlement request, sent by the client
// after the gateway confirmed the charge
type PaymentRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0"`  // Charged amount
	CartItemID uint    `json:"cart_item_id" binding:"required"` // Cart entry being consumed
	ClassID    uint    `json:"class_id" binding:"required"`     // Class being purchased
}

// SettleHandler finalizes an enrollment after a confirmed charge. The payer
// is always the verified identity behind the token, so one user can never
// settle another user's cart entry.
func SettleHandler(svc *settlement.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email") // Verified payer email from the token
		var req PaymentRequest        // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Run the workflow under a server-imposed deadline
		ctx, cancel := context.WithTimeout(c.Request.Context(), settleTimeout)
		defer cancel()
		result, err := svc.Settle(ctx, settlement.Request{
			Email:      email,          // Payer from the token, not the body
			Amount:     req.Amount,     // Charged amount
			CartItemID: req.CartItemID, // Consumed cart entry
			ClassID:    req.ClassID,    // Purchased class
		})
		// Map settlement failures onto the error taxonomy
		if err != nil {
			switch {
			case errors.Is(err, settlement.ErrSeatUnavailable):
				// Class filled up before this charge settled
				c.JSON(http.StatusConflict, gin.H{"error": "No seats available", "result": result})
			case errors.Is(err, settlement.ErrAlreadySettled):
				// A retry of an already settled payment is a conflict, not data loss
				c.JSON(http.StatusConflict, gin.H{"error": "Cart item already settled", "result": result})
			case errors.Is(err, settlement.ErrCartItemNotFound), errors.Is(err, settlement.ErrClassNotFound):
				// Referenced entities are gone
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "result": result})
			default:
				// Anything else is a transient store failure; retrying is safe
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Settlement failed", "result": result})
			}
			return
		}
		// Counters and history changed; drop every listing they feed
		cctx := context.Background() // Context for Redis operations
		for _, key := range settlementCacheKeys(email) {
			_ = utils.DeleteCache(cctx, rdb, key)
		}
		// Return the per-step outcome
		c.JSON(http.StatusOK, gin.H{"result": result})
	}
}

// PaymentHistoryHandler returns the payment history of the user named in
// the path, newest first, paginated; guarded by SelfOnlyMiddleware
func PaymentHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")       // Owner of the history
		page, pageSize := pageParams(c) // Pagination parameters
		offset := (page - 1) * pageSize // Calculate offset
		// Redis cache key including pagination
		cacheKey := "payments:user:" + email + ":page:" + c.DefaultQuery("page", "1") + ":size:" + c.DefaultQuery("page_size", "20")
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Payments []domain.Payment `json:"payments"` // List of payments
			Total    int64            `json:"total"`    // Total payments
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"payments": cached.Payments, "total": cached.Total, "cached": true})
			return
		}
		var total int64 // Total count of payments
		// Count payments for pagination
		if err := db.Model(&domain.Payment{}).Where("email = ?", email).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count payments"})
			return
		}
		var history []domain.Payment // Slice to hold payments
		// Fetch paginated payments, newest first
		if err := db.Where("email = ?", email).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&history).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
			return
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, gin.H{"payments": history, "total": total}, utils.CacheTTL)
		c.JSON(http.StatusOK, gin.H{"payments": history, "total": total, "cached": false})
	}
}
