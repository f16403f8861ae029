// Package scrollback holds the most recent rendered units in a fixed-size ring.
package scrollback

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 2000

// Ring keeps at most Cap() entries; pushing onto a full ring drops the oldest.
// It is not safe for concurrent use.
type Ring struct {
	buf   []string
	next  int
	count int
}

// New returns an empty ring holding up to capacity entries.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]string, capacity)}
}

// Push appends entry, evicting the oldest one when the ring is full.
func (r *Ring) Push(entry string) {
	r.buf[r.next] = entry
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Lines returns the retained entries oldest first.
func (r *Ring) Lines() []string {
	out := make([]string, r.count)
	if r.count == len(r.buf) {
		for i := 0; i < r.count; i++ {
			out[i] = r.buf[(r.next+i)%len(r.buf)]
		}
	} else {
		copy(out, r.buf[:r.count])
	}
	return out
}

// Len reports how many entries are retained.
func (r *Ring) Len() int { return r.count }

// Cap reports the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Clear drops every entry.
func (r *Ring) Clear() {
	for i := range r.buf {
		r.buf[i] = ""
	}
	r.next = 0
	r.count = 0
}
