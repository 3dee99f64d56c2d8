package api

import (
	"encoding/json"     // Decoding handler responses
	"errors"            // Building test errors
	"fmt"               // Error wrapping
	"net/http"          // HTTP status codes
	"net/http/httptest" // Recording test responses
	"strings"           // Request bodies
	"testing"           // Testing framework

	"creativelens/internal/utils" // Token verification

	"github.com/gin-gonic/gin"            // Gin web framework
	"github.com/stretchr/testify/assert"  // Assertions
	"github.com/stretchr/testify/require" // Hard assertions
	"gorm.io/gorm"                        // GORM ORM library
)

// Only a translated unique-index violation counts as a duplicate; transient
// store failures must not be mistaken for one
func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	// Wrapped duplicates still match
	assert.True(t, isDuplicateKey(fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey)))
	// Outages and deadlocks do not
	assert.False(t, isDuplicateKey(errors.New("dial tcp: connection refused")))
	assert.False(t, isDuplicateKey(gorm.ErrInvalidTransaction))
	assert.False(t, isDuplicateKey(nil))
}

// An issued token must verify back to the email it was requested for
func TestTokenHandlerIssuesVerifiableToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/jwt", TokenHandler("issue-test-secret"))

	req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`{"email":"Student@Example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := utils.ParseJWT(resp.Token, "issue-test-secret")
	require.NoError(t, err)
	// Emails are normalized to lower case at issuance
	assert.Equal(t, "student@example.com", claims.Email)
}

// A body without a usable email is rejected before any token is minted
func TestTokenHandlerRejectsInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/jwt", TokenHandler("issue-test-secret"))

	req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
