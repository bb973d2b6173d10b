package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	Submissions.WithLabelValues(OutcomeAccepted).Inc()
	AdminLogins.WithLabelValues("success").Inc()

	n, err := testutil.GatherAndCount(reg, "portfolio_contact_submissions_total", "portfolio_admin_logins_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Panics(t, func() { RegisterCollectors(reg) }, "double registration must panic")
}
