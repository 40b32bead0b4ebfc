package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	SubmissionsTotal.WithLabelValues("published").Inc()
	ModerationPending.Set(3)

	assert.Equal(t, float64(3), testutil.ToFloat64(ModerationPending))
	assert.GreaterOrEqual(t, testutil.ToFloat64(SubmissionsTotal.WithLabelValues("published")), float64(1))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "onyx_submissions_total")
	assert.Contains(t, names, "onyx_moderation_pending")

	assert.Panics(t, func() { Register(reg) })
}
