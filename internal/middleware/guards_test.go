package middleware

import (
	"context"           // Context for the fake role source
	"errors"            // Lookup miss error
	"net/http"          // HTTP status codes
	"net/http/httptest" // Recording test responses
	"testing"           // Testing framework

	"creativelens/internal/domain" // Role constants
	"creativelens/internal/utils"  // Token issuance

	"github.com/gin-gonic/gin"            // Gin web framework
	"github.com/stretchr/testify/assert"  // Assertions
	"github.com/stretchr/testify/require" // Hard assertions
)

const guardSecret = "guard-test-secret"

// fakeRoles is an in-memory RoleSource keyed by email
type fakeRoles map[string]string

func (f fakeRoles) RoleByEmail(_ context.Context, email string) (string, error) {
	role, ok := f[email]
	if !ok {
		return "", errors.New("user not found")
	}
	return role, nil
}

// guardRouter builds a router with one role-guarded and one self-guarded
// route, both behind JWT verification
func guardRouter(roles fakeRoles) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/admin-only", JWTAuthMiddleware(guardSecret), RoleRequiredMiddleware(roles, domain.RoleAdmin), ok)
	r.GET("/instructor-only", JWTAuthMiddleware(guardSecret), RoleRequiredMiddleware(roles, domain.RoleInstructor), ok)
	r.GET("/self/:email", JWTAuthMiddleware(guardSecret), SelfOnlyMiddleware("email"), ok)
	return r
}

// get performs a GET with an optional bearer token and returns the recorder
func get(t *testing.T, r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// token mints a valid bearer token for the given email
func token(t *testing.T, email string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(email, guardSecret)
	require.NoError(t, err)
	return tok
}

// A request without a token is always 401, even when the identity it would
// have carried satisfies the role guard - authentication is decided first
func TestGuardsRejectMissingTokenFirst(t *testing.T) {
	r := guardRouter(fakeRoles{"admin@example.com": domain.RoleAdmin})

	w := get(t, r, "/admin-only", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(t, r, "/self/admin@example.com", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// A malformed or badly signed token is 401, not 403
func TestGuardsRejectInvalidToken(t *testing.T) {
	r := guardRouter(fakeRoles{"admin@example.com": domain.RoleAdmin})

	w := get(t, r, "/admin-only", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := utils.GenerateJWT("admin@example.com", "some-other-secret")
	require.NoError(t, err)
	w = get(t, r, "/admin-only", other)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Role isolation: each role guard admits exactly its own role
func TestRoleGuardIsolation(t *testing.T) {
	r := guardRouter(fakeRoles{
		"admin@example.com":      domain.RoleAdmin,
		"instructor@example.com": domain.RoleInstructor,
	})

	// Admin passes the admin guard but not the instructor guard
	assert.Equal(t, http.StatusOK, get(t, r, "/admin-only", token(t, "admin@example.com")).Code)
	assert.Equal(t, http.StatusForbidden, get(t, r, "/instructor-only", token(t, "admin@example.com")).Code)

	// Instructor passes the instructor guard but not the admin guard
	assert.Equal(t, http.StatusOK, get(t, r, "/instructor-only", token(t, "instructor@example.com")).Code)
	assert.Equal(t, http.StatusForbidden, get(t, r, "/admin-only", token(t, "instructor@example.com")).Code)
}

// A verified identity with no user record at all is denied by any role guard
func TestRoleGuardUnknownUser(t *testing.T) {
	r := guardRouter(fakeRoles{})

	w := get(t, r, "/admin-only", token(t, "ghost@example.com"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// Self ownership: the path email must equal the verified email
func TestSelfGuard(t *testing.T) {
	r := guardRouter(fakeRoles{})

	// Owner is allowed through
	w := get(t, r, "/self/alice@example.com", token(t, "alice@example.com"))
	assert.Equal(t, http.StatusOK, w.Code)

	// Anyone else is denied with a real error, not a soft body-level status
	w = get(t, r, "/self/alice@example.com", token(t, "bob@example.com"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
