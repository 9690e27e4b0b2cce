package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveEngine(t *testing.T) {
	before := testutil.ToFloat64(EngineRuns.WithLabelValues("cascade", "ok"))

	ObserveEngine("cascade", "ok", time.Now())

	after := testutil.ToFloat64(EngineRuns.WithLabelValues("cascade", "ok"))
	assert.Equal(t, before+1, after)
}
