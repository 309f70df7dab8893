package engagement

import (
	"errors"
	"testing"
)

func TestToggle(t *testing.T) {
	start := Tally{Count: 1, Voters: []string{"alice"}}

	liked, on := Toggle(start, "bob")
	if !on {
		t.Fatal("expected bob to be a voter after first toggle")
	}
	if liked.Count != 2 || len(liked.Voters) != 2 || !liked.Has("bob") {
		t.Fatalf("unexpected tally after like: %+v", liked)
	}

	back, on := Toggle(liked, "bob")
	if on {
		t.Fatal("expected bob removed after second toggle")
	}
	if back.Count != start.Count || len(back.Voters) != len(start.Voters) || back.Has("bob") {
		t.Fatalf("double toggle should restore %+v, got %+v", start, back)
	}

	// the input slice must be left untouched
	if len(start.Voters) != 1 || start.Voters[0] != "alice" {
		t.Errorf("input tally mutated: %+v", start)
	}
}

func TestToggleKeepsCountInSync(t *testing.T) {
	tally := Tally{}
	actors := []string{"a", "b", "a", "c", "b", "b", "a"}
	for _, actor := range actors {
		tally, _ = Toggle(tally, actor)
		if tally.Count != len(tally.Voters) {
			t.Fatalf("count %d != voters %d after %q", tally.Count, len(tally.Voters), actor)
		}
	}
	if tally.Count != 3 {
		t.Errorf("final count = %d, want 3", tally.Count)
	}
}

func TestUpvote(t *testing.T) {
	tally, err := Upvote(Tally{}, "alice")
	if err != nil {
		t.Fatalf("first upvote: %v", err)
	}
	if tally.Count != 1 || !tally.Has("alice") {
		t.Fatalf("unexpected tally: %+v", tally)
	}

	again, err := Upvote(tally, "alice")
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if again.Count != 1 || len(again.Voters) != 1 {
		t.Errorf("repeat upvote changed tally: %+v", again)
	}

	tally, err = Upvote(tally, "bob")
	if err != nil || tally.Count != 2 {
		t.Errorf("second voter: tally=%+v err=%v", tally, err)
	}
}
