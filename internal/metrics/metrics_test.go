package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHelpersAfterInit(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(transitions.WithLabelValues("pay", ResultError))
	ObserveTransition("pay", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(transitions.WithLabelValues("pay", ResultError)))

	before = testutil.ToFloat64(installmentsCreated.WithLabelValues("plan"))
	ObservePlan("generate", 3, nil)
	assert.Equal(t, before+3, testutil.ToFloat64(installmentsCreated.WithLabelValues("plan")))

	SetOverdue("1-30 days", decimal.RequireFromString("125.50"), 2)
	assert.Equal(t, 125.5, testutil.ToFloat64(overdueAmount.WithLabelValues("1-30 days")))
	assert.Equal(t, 2.0, testutil.ToFloat64(overdueCount.WithLabelValues("1-30 days")))

	ObserveAdvisor(AdvisorOutcomeUnavailable, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(advisorLookups.WithLabelValues(AdvisorOutcomeUnavailable)))
}
