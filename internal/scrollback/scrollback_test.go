package scrollback

import (
	"fmt"
	"reflect"
	"testing"
)

func TestRingLines(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("Line %d", i))
	}

	tests := []struct {
		name     string
		capacity int
		expected []string
	}{
		{name: "partial (5)", capacity: 5, expected: all[5:]},
		{name: "exactly all (10)", capacity: 10, expected: all},
		{name: "more than pushed (20)", capacity: 20, expected: all},
		{name: "one", capacity: 1, expected: all[9:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.capacity)
			for _, line := range all {
				r.Push(line)
			}
			if got := r.Lines(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lines() = %v, want %v", got, tt.expected)
			}
			if r.Len() != len(tt.expected) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.expected))
			}
		})
	}
}

func TestRingDefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if got := New(capacity).Cap(); got != DefaultCapacity {
			t.Fatalf("New(%d).Cap() = %d, want %d", capacity, got, DefaultCapacity)
		}
	}
}

func TestRingClear(t *testing.T) {
	r := New(3)
	r.Push("a")
	r.Push("b")
	r.Push("c")
	r.Push("d")
	r.Clear()

	if r.Len() != 0 || len(r.Lines()) != 0 {
		t.Fatalf("after Clear: Len() = %d, Lines() = %v", r.Len(), r.Lines())
	}

	r.Push("e")
	if got := r.Lines(); !reflect.DeepEqual(got, []string{"e"}) {
		t.Fatalf("Lines() after Clear+Push = %v, want [e]", got)
	}
}

func TestRingLinesIsCopy(t *testing.T) {
	r := New(2)
	r.Push("a")
	lines := r.Lines()
	lines[0] = "mutated"
	if got := r.Lines()[0]; got != "a" {
		t.Fatalf("Lines()[0] = %q after mutating copy, want a", got)
	}
}
