package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUpdateStorageTotals(t *testing.T) {
	UpdateStorageTotals(3, 7, 2)

	assert.Equal(t, 3.0, testutil.ToFloat64(UsersTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(AdsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(SubscriptionsTotal))
}

func TestUpdateActiveUsers(t *testing.T) {
	UpdateActiveUsers(5)
	assert.Equal(t, 5.0, testutil.ToFloat64(ActiveUsers))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(StorageOperations.WithLabelValues("create_ad"))
	IncrementOperation("create_ad")
	IncrementOperation("create_ad")
	assert.Equal(t, before+2, testutil.ToFloat64(StorageOperations.WithLabelValues("create_ad")))

	before = testutil.ToFloat64(PersistenceErrors.WithLabelValues("save"))
	IncrementPersistenceError("save")
	assert.Equal(t, before+1, testutil.ToFloat64(PersistenceErrors.WithLabelValues("save")))

	before = testutil.ToFloat64(Notifications.WithLabelValues("sent"))
	IncrementNotification("sent")
	assert.Equal(t, before+1, testutil.ToFloat64(Notifications.WithLabelValues("sent")))
}

func TestObservePersist(t *testing.T) {
	// must not panic for zero or large durations
	ObservePersist(0)
	ObservePersist(3 * time.Second)
	assert.Equal(t, 1, testutil.CollectAndCount(PersistDuration))
}
