package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Test Group 1: unset and valid values
// ============================================================================

func TestString_WithValue(t *testing.T) {
	t.Setenv("TEST_STRING", "custom_value")

	r := String("TEST_STRING", "default_value", nil)

	assert.Equal(t, "custom_value", r.Value)
	assert.False(t, r.FallbackApplied)
	assert.Empty(t, r.Warning)
}

func TestString_Unset(t *testing.T) {
	r := String("TEST_STRING_UNSET", "default_value", nil)

	assert.Equal(t, "default_value", r.Value)
	assert.False(t, r.FallbackApplied)
}

func TestString_BlankUsesDefaultWithoutWarning(t *testing.T) {
	t.Setenv("TEST_STRING", "   ")

	r := String("TEST_STRING", "default_value", nil)

	assert.Equal(t, "default_value", r.Value)
	assert.False(t, r.FallbackApplied)
}

func TestInt_TrimsSpaces(t *testing.T) {
	t.Setenv("TEST_INT", " 42 ")

	r := Int("TEST_INT", 7, nil)

	assert.Equal(t, 42, r.Value)
	assert.False(t, r.FallbackApplied)
}

func TestDuration_Valid(t *testing.T) {
	t.Setenv("TEST_DURATION", "720h")

	r := Duration("TEST_DURATION", time.Hour, ValidatePositiveDuration)

	assert.Equal(t, 720*time.Hour, r.Value)
	assert.False(t, r.FallbackApplied)
}

// ============================================================================
// Test Group 2: fallbacks
// ============================================================================

func TestInt_ParseErrorFallsBack(t *testing.T) {
	t.Setenv("TEST_INT", "fifty")

	r := Int("TEST_INT", 50, nil)

	assert.Equal(t, 50, r.Value)
	assert.True(t, r.FallbackApplied)
	assert.Contains(t, r.Warning, "TEST_INT")
	assert.Contains(t, r.Warning, "fifty")
}

func TestInt_ValidationErrorFallsBack(t *testing.T) {
	t.Setenv("TEST_INT", "0")

	r := Int("TEST_INT", 25, ValidatePositiveInt)

	assert.Equal(t, 25, r.Value)
	assert.True(t, r.FallbackApplied)
	assert.Contains(t, r.Warning, "must be positive")
}

func TestDuration_DaySuffixIsRejected(t *testing.T) {
	t.Setenv("TEST_DURATION", "30d")

	r := Duration("TEST_DURATION", 720*time.Hour, nil)

	assert.Equal(t, 720*time.Hour, r.Value)
	assert.True(t, r.FallbackApplied)
}

func TestString_ValidatorRejects(t *testing.T) {
	t.Setenv("TEST_CRON", "every day")

	r := String("TEST_CRON", "0 3 * * *", ValidateCronSchedule)

	assert.Equal(t, "0 3 * * *", r.Value)
	assert.True(t, r.FallbackApplied)
	assert.Contains(t, r.Warning, "invalid cron schedule")
}
