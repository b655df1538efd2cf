// Package standup picks the speaking order for a stand-up meeting
package standup

import (
	"math/rand"

	"github.com/illarion/sprintdeck/internal/tracker"
)

// Rotation draws team members in random order without repeats and keeps
// the drawn order as a history that can be walked back and forth.
// It is not safe for concurrent use.
type Rotation struct {
	people    []tracker.Person
	rng       *rand.Rand
	available []tracker.Person
	history   []tracker.Person
	index     int
}

// NewRotation creates a rotation over people. Nobody is drawn yet.
func NewRotation(people []tracker.Person, rng *rand.Rand) *Rotation {
	r := &Rotation{
		people: append([]tracker.Person(nil), people...),
		rng:    rng,
	}
	r.Reset()
	return r
}

// Draw picks a random member who has not spoken yet, appends them to the
// history and makes them current. It returns false once everyone is drawn.
func (r *Rotation) Draw() (tracker.Person, bool) {
	if len(r.available) == 0 {
		return tracker.Person{}, false
	}
	i := r.rng.Intn(len(r.available))
	p := r.available[i]
	r.available = append(r.available[:i], r.available[i+1:]...)

	r.history = append(r.history, p)
	r.index = len(r.history) - 1
	return p, true
}

// Next moves forward in the history, or draws a new member when the
// current one is the latest. It returns false when there is nobody left.
func (r *Rotation) Next() (tracker.Person, bool) {
	if r.index < len(r.history)-1 {
		r.index++
		return r.history[r.index], true
	}
	return r.Draw()
}

// Prev moves back in the history. It returns false at the first member.
func (r *Rotation) Prev() (tracker.Person, bool) {
	if r.index <= 0 {
		return tracker.Person{}, false
	}
	r.index--
	return r.history[r.index], true
}

// Reset forgets the history and makes everyone available again
func (r *Rotation) Reset() {
	r.available = append([]tracker.Person(nil), r.people...)
	r.history = nil
	r.index = -1
}

// Current returns the member being shown, if any
func (r *Rotation) Current() (tracker.Person, bool) {
	if r.index < 0 {
		return tracker.Person{}, false
	}
	return r.history[r.index], true
}

// Position returns the 1-based history position of the current member and
// the team size
func (r *Rotation) Position() (int, int) {
	return r.index + 1, len(r.people)
}

// History returns the members drawn so far in draw order
func (r *Rotation) History() []tracker.Person {
	return append([]tracker.Person(nil), r.history...)
}

// Remaining returns how many members have not been drawn yet
func (r *Rotation) Remaining() int {
	return len(r.available)
}

// Tickets returns the issues assigned to p, sorted by status
func Tickets(issues []tracker.Issue, p tracker.Person) []tracker.Issue {
	var mine []tracker.Issue
	for _, issue := range issues {
		if a := issue.Fields.Assignee; a != nil && a.AccountID == p.AccountID {
			mine = append(mine, issue)
		}
	}
	return tracker.SortByStatus(mine)
}
