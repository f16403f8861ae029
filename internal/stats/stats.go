package stats

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/roster"
)

// Snapshot is a point-in-time view of the running counters. Elapsed and Rate
// are derived when the snapshot is taken.
type Snapshot struct {
	Count     int
	Unmatched int
	Elapsed   time.Duration
	Rate      int // whole messages per second, floored
}

// ElapsedSeconds returns Elapsed truncated to whole seconds.
func (s Snapshot) ElapsedSeconds() int {
	return int(s.Elapsed / time.Second)
}

// String formats the snapshot as the stats line shown to the operator.
func (s Snapshot) String() string {
	return fmt.Sprintf("%d messages | %ds elapsed | %d msg/s", s.Count, s.ElapsedSeconds(), s.Rate)
}

// Tally is the per-agent activity seen during a session.
type Tally struct {
	Agent      roster.ID
	Sent       int
	Received   int
	Statuses   int
	LastStatus string
}

// Aggregator accumulates session counters. Counters only grow; there is no
// reset. The zero value is not usable, construct with New.
type Aggregator struct {
	mu        sync.RWMutex
	now       func() time.Time
	start     time.Time
	count     int
	unmatched int
	agents    map[roster.ID]*Tally
}

// New starts a session clock at now(). A nil now uses time.Now.
func New(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		now:    now,
		start:  now(),
		agents: make(map[roster.ID]*Tally),
	}
}

// RecordMessage counts one displayed conversation message.
func (a *Aggregator) RecordMessage() {
	a.mu.Lock()
	a.count++
	a.mu.Unlock()
}

// RecordConversation credits a message to its sender and recipient.
func (a *Aggregator) RecordConversation(from, to roster.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tally(from).Sent++
	a.tally(to).Received++
}

// RecordStatus remembers the latest status of agent. Unattributed statuses
// are ignored.
func (a *Aggregator) RecordStatus(agent roster.ID, status string) {
	if agent == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	t := a.tally(agent)
	t.Statuses++
	t.LastStatus = status
}

// RecordUnmatched counts a line that was not a recognised event.
func (a *Aggregator) RecordUnmatched() {
	a.mu.Lock()
	a.unmatched++
	a.mu.Unlock()
}

func (a *Aggregator) tally(id roster.ID) *Tally {
	t, ok := a.agents[id]
	if !ok {
		t = &Tally{Agent: id}
		a.agents[id] = t
	}
	return t
}

// Snapshot returns the current counters without modifying them.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	elapsed := a.now().Sub(a.start)
	if elapsed < 0 {
		elapsed = 0
	}
	secs := int(elapsed / time.Second)
	if secs < 1 {
		secs = 1
	}
	return Snapshot{
		Count:     a.count,
		Unmatched: a.unmatched,
		Elapsed:   elapsed,
		Rate:      a.count / secs,
	}
}

// Tallies returns a copy of the per-agent tallies sorted by agent name.
func (a *Aggregator) Tallies() []Tally {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Tally, 0, len(a.agents))
	for _, t := range a.agents {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Agent < out[j].Agent })
	return out
}
