package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{"0 3 * * *", false},
		{"*/15 * * * *", false},
		{"30 9 * * 1-5", false},
		{"", true},
		{"invalid", true},
		{"0 3 * *", true},
		{"0 0 3 * * *", true}, // seconds field is not accepted
		{"61 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.NoError(t, ValidateTimezone("America/Lima"))

	assert.Error(t, ValidateTimezone(""))
	err := ValidateTimezone("Mars/Olympus")
	assert.ErrorContains(t, err, "Mars/Olympus")
}

func TestValidateDuration(t *testing.T) {
	assert.NoError(t, ValidateDuration(time.Hour, time.Hour, 2*time.Hour))
	assert.NoError(t, ValidateDuration(2*time.Hour, time.Hour, 2*time.Hour))
	assert.ErrorContains(t, ValidateDuration(time.Minute, time.Hour, 2*time.Hour), "out of range")
	assert.ErrorContains(t, ValidateDuration(3*time.Hour, time.Hour, 2*time.Hour), "out of range")
	assert.ErrorContains(t, ValidateDuration(time.Hour, 2*time.Hour, time.Hour), "invalid duration range")
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(1, 1, 1000))
	assert.NoError(t, ValidateIntRange(1000, 1, 1000))
	assert.Error(t, ValidateIntRange(0, 1, 1000))
	assert.Error(t, ValidateIntRange(1001, 1, 1000))
}

func TestValidatePositive(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))

	assert.NoError(t, ValidatePositiveInt(1))
	assert.Error(t, ValidatePositiveInt(0))
}
