package main

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func queryCount(t *testing.T, m *Metrics, command, outcome string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.queries.WithLabelValues(command, outcome))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.Query("cli_dist", nil)
	m.Query("cli_dist", nil)
	m.Query("cli_dist", errors.New("boom"))
	m.Load(time.Now(), nil)
	m.Load(time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, queryCount(t, m, "cli_dist", "ok"))
	assert.Equal(t, 1.0, queryCount(t, m, "cli_dist", "error"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.queries))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Query("repl_list", nil)
		m.Load(time.Now(), nil)
	})
}
