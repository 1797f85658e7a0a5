package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}

func TestObserveQuery(t *testing.T) {
	before := testutil.CollectAndCount(QueryDuration)

	ObserveQuery("metrics_test.observe", time.Now(), nil)
	ObserveQuery("metrics_test.observe", time.Now(), errors.New("boom"))

	assert.Equal(t, before+2, testutil.CollectAndCount(QueryDuration))
}
