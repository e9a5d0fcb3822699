package editor

import (
	"sync/atomic"

	"github.com/dshills/blockpad/internal/document"
)

// kinds lists the operation kinds in counter order.
var kinds = [...]document.Kind{
	document.KindEdit,
	document.KindInsert,
	document.KindRemove,
	document.KindMerge,
}

// KindStats counts the outcomes of one operation kind.
type KindStats struct {
	Applied uint64
	Failed  uint64
}

// Stats reports operation counts for an editor.
type Stats struct {
	// Kinds holds the counts per operation kind.
	Kinds map[document.Kind]KindStats

	// Applied is the total number of applied operations.
	Applied uint64

	// Failed is the total number of rejected operations.
	Failed uint64

	// Discarded counts queued operations dropped after a failure.
	Discarded uint64
}

type counters struct {
	applied   [len(kinds)]atomic.Uint64
	failed    [len(kinds)]atomic.Uint64
	discarded atomic.Uint64
}

func (c *counters) record(k document.Kind, err error) {
	if int(k) >= len(kinds) {
		return
	}
	if err != nil {
		c.failed[k].Add(1)
		return
	}
	c.applied[k].Add(1)
}

func (c *counters) snapshot() Stats {
	s := Stats{Kinds: make(map[document.Kind]KindStats, len(kinds))}
	for i, k := range kinds {
		ks := KindStats{
			Applied: c.applied[i].Load(),
			Failed:  c.failed[i].Load(),
		}
		s.Kinds[k] = ks
		s.Applied += ks.Applied
		s.Failed += ks.Failed
	}
	s.Discarded = c.discarded.Load()
	return s
}

func (c *counters) reset() {
	for i := range kinds {
		c.applied[i].Store(0)
		c.failed[i].Store(0)
	}
	c.discarded.Store(0)
}
