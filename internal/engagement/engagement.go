// Package engagement implements the two voting capabilities: reversible
// likes on vents and one-way upvotes on tips. Both keep a counter and the set
// of voters that produced it; Count always equals len(Voters).
package engagement

import (
	"errors"
)

// ErrAlreadyVoted is returned by Upvote when the actor already upvoted.
var ErrAlreadyVoted = errors.New("already voted")

type Tally struct {
	Count  int
	Voters []string
}

func (t Tally) Has(actor string) bool {
	for _, v := range t.Voters {
		if v == actor {
			return true
		}
	}
	return false
}

// Toggle adds actor if absent and removes it if present. The returned bool is
// true when actor is a voter afterwards.
func Toggle(t Tally, actor string) (Tally, bool) {
	if t.Has(actor) {
		return Tally{Count: t.Count - 1, Voters: without(t.Voters, actor)}, false
	}
	return Tally{Count: t.Count + 1, Voters: with(t.Voters, actor)}, true
}

// Upvote adds actor once. Upvotes can't be retracted.
func Upvote(t Tally, actor string) (Tally, error) {
	if t.Has(actor) {
		return t, ErrAlreadyVoted
	}
	return Tally{Count: t.Count + 1, Voters: with(t.Voters, actor)}, nil
}

func with(voters []string, actor string) []string {
	out := make([]string, 0, len(voters)+1)
	out = append(out, voters...)
	return append(out, actor)
}

func without(voters []string, actor string) []string {
	out := make([]string, 0, len(voters))
	for _, v := range voters {
		if v != actor {
			out = append(out, v)
		}
	}
	return out
}
