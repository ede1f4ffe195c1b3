// ABOUTME: Tests for the decision and check-in counters
// ABOUTME: Snapshot returns copies; concurrent increments don't race

package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector()

	c.RecordDecision("success")
	c.RecordDecision("success")
	c.RecordDecision("no_key")
	c.RecordCheckin()

	decisions, checkins := c.Snapshot()
	assert.Equal(t, int64(2), decisions["success"])
	assert.Equal(t, int64(1), decisions["no_key"])
	assert.Equal(t, int64(1), checkins)
}

func TestCollector_SnapshotIsCopy(t *testing.T) {
	c := NewCollector()
	c.RecordDecision("success")

	decisions, _ := c.Snapshot()
	decisions["success"] = 99

	fresh, _ := c.Snapshot()
	assert.Equal(t, int64(1), fresh["success"])
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordDecision("success")
				c.RecordCheckin()
			}
		}()
	}
	wg.Wait()

	decisions, checkins := c.Snapshot()
	assert.Equal(t, int64(1000), decisions["success"])
	assert.Equal(t, int64(1000), checkins)
}
