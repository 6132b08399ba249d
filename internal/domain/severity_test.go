package domain_test

import (
	"testing"

	"github.com/couchcryptid/event-feed-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifySeverity_CriticalTier(t *testing.T) {
	score := domain.ClassifySeverity("Dozens killed in explosion", "", false, false)
	assert.Equal(t, 5, score)
}

func TestClassifySeverity_CriticalOverridesLowerTiers(t *testing.T) {
	// Critical-tier hit decides the score even with high/medium words present.
	score := domain.ClassifySeverity(
		"Protest turns deadly: three killed amid election violence", "", false, false)
	assert.Equal(t, 5, score)
}

func TestClassifySeverity_HighTier(t *testing.T) {
	score := domain.ClassifySeverity("Mass protest shuts down capital", "", false, false)
	assert.Equal(t, 4, score)
}

func TestClassifySeverity_MediumTier(t *testing.T) {
	score := domain.ClassifySeverity("Parliament approves new sanctions package", "", false, false)
	assert.Equal(t, 3, score)
}

func TestClassifySeverity_BaseScore(t *testing.T) {
	score := domain.ClassifySeverity("Quarterly figures released today", "", false, false)
	assert.Equal(t, 2, score)
}

func TestClassifySeverity_BreakingBoost(t *testing.T) {
	// High tier (protest/violent) gives 4; the breaking flag lifts it to 5.
	score := domain.ClassifySeverity("Breaking: protest turns violent in Paris", "", true, false)
	assert.Equal(t, 5, score)

	// Already critical: no boost past the cap.
	score = domain.ClassifySeverity("Hundreds killed in earthquake", "", true, false)
	assert.Equal(t, 5, score)
}

func TestClassifySeverity_RecentBoostCapsAtFour(t *testing.T) {
	score := domain.ClassifySeverity("Quarterly figures released today", "", false, true)
	assert.Equal(t, 3, score)

	// Recency never lifts a 4 to 5.
	score = domain.ClassifySeverity("Mass protest shuts down capital", "", false, true)
	assert.Equal(t, 4, score)
}

func TestClassifySeverity_SummaryIsSearched(t *testing.T) {
	score := domain.ClassifySeverity("Regional update", "Wildfire forces evacuation of two towns", false, false)
	assert.Equal(t, 4, score)
}

func TestClassifySeverity_CaseInsensitive(t *testing.T) {
	score := domain.ClassifySeverity("MASSACRE REPORTED IN BORDER TOWN", "", false, false)
	assert.Equal(t, 5, score)
}
