package engine

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/evdnx/tacore/indicator/core"
)

// memo holds the series computed during one evaluation, indexed by plan
// slot. Each slot is written at most once; concurrent requests for a slot
// that is still being computed wait for that single computation.
type memo struct {
	mu     sync.RWMutex
	series []core.Series
	ready  []bool
	group  singleflight.Group
}

func newMemo(slots int) *memo {
	return &memo{
		series: make([]core.Series, slots),
		ready:  make([]bool, slots),
	}
}

func (m *memo) load(slot int) (core.Series, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.series[slot], m.ready[slot]
}

func (m *memo) store(slot int, s core.Series) {
	m.mu.Lock()
	m.series[slot] = s
	m.ready[slot] = true
	m.mu.Unlock()
}

// once returns the series in slot, running compute only if no other caller
// has produced or is producing it.
func (m *memo) once(key string, slot int, compute func() (core.Series, error)) (core.Series, error) {
	if s, ok := m.load(slot); ok {
		return s, nil
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		// A previous flight may have finished between load and Do.
		if s, ok := m.load(slot); ok {
			return s, nil
		}
		s, err := compute()
		if err != nil {
			return nil, err
		}
		m.store(slot, s)
		return s, nil
	})
	if err != nil {
		return core.Series{}, err
	}
	return v.(core.Series), nil
}
