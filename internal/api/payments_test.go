package api

import (
	"testing" // Testing framework

	"github.com/stretchr/testify/assert" // Assertions
)

// A settlement moves the class counters, the instructor ranking and the
// payer's history, so every cache fed by them must be on the invalidation
// list
func TestSettlementCacheKeysCoverStaleListings(t *testing.T) {
	keys := settlementCacheKeys("student@example.com")

	assert.Contains(t, keys, classesApprovedKey)
	assert.Contains(t, keys, classesPopularKey)
	assert.Contains(t, keys, instructorsPopularKey)
	// The payer's first history pages are dropped the same way the
	// history handler writes them
	for _, page := range []string{"1", "2", "3", "4", "5"} {
		assert.Contains(t, keys, "payments:user:student@example.com:page:"+page+":size:20")
	}
}

// The invalidation list is scoped to the payer, never to other users
func TestSettlementCacheKeysScopedToPayer(t *testing.T) {
	keys := settlementCacheKeys("a@example.com")
	for _, key := range keys {
		assert.NotContains(t, key, "b@example.com")
	}
}
