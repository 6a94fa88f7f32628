package master

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduledMaster(n int, offline map[int]bool) *Master {
	m := NewMaster(make([]string, n), 0, 0, zerolog.Nop())
	for i, r := range m.replicas {
		if offline[i] {
			r.status = Offline
		} else {
			r.status = Online
		}
	}
	return m
}

func TestSchedulerRoundRobinFairness(t *testing.T) {
	m := newScheduledMaster(2, nil)

	var picks []uint32
	for i := 0; i < 4; i++ {
		r := m.scheduleNext()
		require.NotNil(t, r)
		picks = append(picks, r.id)
	}

	assert.Equal(t, []uint32{0, 1, 0, 1}, picks)
}

func TestSchedulerSkipsOffline(t *testing.T) {
	m := newScheduledMaster(3, map[int]bool{1: true})

	var picks []uint32
	for i := 0; i < 4; i++ {
		r := m.scheduleNext()
		require.NotNil(t, r)
		picks = append(picks, r.id)
	}

	assert.Equal(t, []uint32{0, 2, 0, 2}, picks)
}

func TestSchedulerNoneOnlineReturnsNil(t *testing.T) {
	m := newScheduledMaster(2, map[int]bool{0: true, 1: true})
	assert.Nil(t, m.scheduleNext())
}

func TestSchedulerFairnessGivenMConsecutiveReads(t *testing.T) {
	const n = 4
	m := newScheduledMaster(n, nil)

	counts := make(map[uint32]int)
	const reads = 17
	for i := 0; i < reads; i++ {
		r := m.scheduleNext()
		require.NotNil(t, r)
		counts[r.id]++
	}

	for id := uint32(0); id < n; id++ {
		assert.GreaterOrEqual(t, counts[id], reads/n)
	}
}
