package roster

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestColorForKnownMembers(t *testing.T) {
	r := Default()
	for _, m := range DefaultMembers() {
		if got := r.ColorFor(m.ID); got != m.Color {
			t.Fatalf("ColorFor(%q) = %q, want %q", m.ID, got, m.Color)
		}
	}
	if got := r.ColorFor("Builder"); got != lipgloss.Color("6") {
		t.Fatalf("ColorFor(Builder) = %q, want cyan", got)
	}
}

func TestColorForUnknownFallsBack(t *testing.T) {
	r := Default()

	ids := []ID{"", "Stranger", "builder", "🤖", "Builder "}
	for _, id := range ids {
		if got := r.ColorFor(id); got != FallbackColor {
			t.Fatalf("ColorFor(%q) = %q, want fallback %q", id, got, FallbackColor)
		}
	}
}

func TestColorForDoesNotLearn(t *testing.T) {
	r := Default()
	before := len(r.Members())

	first := r.ColorFor("Newcomer")
	second := r.ColorFor("Newcomer")
	if first != second {
		t.Fatalf("ColorFor not stable: %q then %q", first, second)
	}
	if r.Known("Newcomer") {
		t.Fatalf("unknown id was cached as a roster member")
	}
	if got := r.ColorFor("Other"); got != FallbackColor {
		t.Fatalf("ColorFor(Other) = %q, want fallback", got)
	}
	if after := len(r.Members()); after != before {
		t.Fatalf("Members() grew from %d to %d after lookups", before, after)
	}
}

func TestNewAppliesOverrides(t *testing.T) {
	r := New(DefaultMembers(), map[string]string{
		"Builder":  "#ff0000",
		" Scout ":  " #00ff00 ",
		"":         "#123456",
		"Blankish": "   ",
	})

	if got := r.ColorFor("Builder"); got != lipgloss.Color("#ff0000") {
		t.Fatalf("ColorFor(Builder) = %q, want override", got)
	}
	if got := r.ColorFor("Scout"); got != lipgloss.Color("#00ff00") {
		t.Fatalf("ColorFor(Scout) = %q, want #00ff00", got)
	}
	if r.Known("Blankish") {
		t.Fatalf("blank override should be ignored")
	}

	members := r.Members()
	if members[0].ID != "Builder" || members[0].Role == "" {
		t.Fatalf("override should keep legend position and role, got %+v", members[0])
	}
	if last := members[len(members)-1]; last.ID != "Scout" {
		t.Fatalf("new member should be appended, got %+v", last)
	}
}

func TestMembersReturnsCopy(t *testing.T) {
	r := Default()
	members := r.Members()
	members[0].Color = lipgloss.Color("#000000")
	if got := r.ColorFor(members[0].ID); got == lipgloss.Color("#000000") {
		t.Fatalf("mutating Members() result changed the registry")
	}
}
