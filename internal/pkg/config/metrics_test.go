package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTracker_RecordsFallbacks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetrics(reg, "test")
	var buf bytes.Buffer
	tr := NewTracker(slog.New(slog.NewJSONHandler(&buf, nil)), m)

	t.Setenv("TEST_BATCH", "-1")
	t.Setenv("TEST_ZONE", "UTC")

	batch := Apply(tr, "batch", Int("TEST_BATCH", 50, ValidatePositiveInt))
	zone := Apply(tr, "timezone", String("TEST_ZONE", "America/Lima", ValidateTimezone))

	assert.Equal(t, 50, batch)
	assert.Equal(t, "UTC", zone)
	assert.True(t, tr.Done())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("batch")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("timezone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
	assert.Greater(t, testutil.ToFloat64(m.LoadTimestamp), 0.0)
	assert.Equal(t, 1, strings.Count(buf.String(), "Configuration fallback applied"))
}

func TestTracker_CleanLoad(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetrics(reg, "clean")
	m.SetFallbackActive(true)

	tr := NewTracker(nil, m)
	_ = Apply(tr, "batch", Int("TEST_BATCH_UNSET", 50, nil))

	assert.False(t, tr.Done())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))
}

func TestTracker_WithoutMetrics(t *testing.T) {
	t.Setenv("TEST_BATCH", "abc")
	tr := NewTracker(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), nil)

	assert.Equal(t, 5, Apply(tr, "batch", Int("TEST_BATCH", 5, nil)))
	assert.True(t, tr.Done())
}

func TestNewConfigMetrics_Names(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetrics(reg, "worker")
	m.RecordLoadTimestamp()
	m.RecordFallback("cron_schedule")
	m.SetFallbackActive(false)

	n, err := testutil.GatherAndCount(reg,
		"worker_config_load_timestamp",
		"worker_config_fallbacks_total",
		"worker_config_fallback_active")
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}
