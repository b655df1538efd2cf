package standup

import (
	"math/rand"
	"testing"

	"github.com/illarion/sprintdeck/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func team() []tracker.Person {
	return []tracker.Person{
		{AccountID: "a1", DisplayName: "Ada"},
		{AccountID: "a2", DisplayName: "Brook"},
		{AccountID: "a3", DisplayName: "Cai"},
		{AccountID: "a4", DisplayName: "Dana"},
		{AccountID: "a5", DisplayName: "Eli"},
	}
}

func drawAll(r *Rotation) []string {
	var ids []string
	for {
		p, ok := r.Draw()
		if !ok {
			return ids
		}
		ids = append(ids, p.AccountID)
	}
}

func TestRotationDrawsEveryoneOnce(t *testing.T) {
	r := NewRotation(team(), rand.New(rand.NewSource(42)))

	_, ok := r.Current()
	assert.False(t, ok, "nobody is current before the first draw")

	ids := drawAll(r)
	assert.Len(t, ids, 5)
	assert.ElementsMatch(t, []string{"a1", "a2", "a3", "a4", "a5"}, ids)
	assert.Zero(t, r.Remaining())

	_, ok = r.Draw()
	assert.False(t, ok)
	_, ok = r.Next()
	assert.False(t, ok)
}

func TestRotationSeedIsDeterministic(t *testing.T) {
	first := drawAll(NewRotation(team(), rand.New(rand.NewSource(7))))
	second := drawAll(NewRotation(team(), rand.New(rand.NewSource(7))))
	assert.Equal(t, first, second)
}

func TestRotationHistoryNavigation(t *testing.T) {
	r := NewRotation(team(), rand.New(rand.NewSource(1)))

	p1, ok := r.Next()
	require.True(t, ok)
	p2, ok := r.Next()
	require.True(t, ok)
	p3, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, []tracker.Person{p1, p2, p3}, r.History())

	pos, size := r.Position()
	assert.Equal(t, 3, pos)
	assert.Equal(t, 5, size)

	back, ok := r.Prev()
	require.True(t, ok)
	assert.Equal(t, p2, back)
	back, ok = r.Prev()
	require.True(t, ok)
	assert.Equal(t, p1, back)
	_, ok = r.Prev()
	assert.False(t, ok, "cannot go before the first member")

	cur, _ := r.Current()
	assert.Equal(t, p1, cur)

	// Next walks the history before drawing anyone new
	fwd, _ := r.Next()
	assert.Equal(t, p2, fwd)
	fwd, _ = r.Next()
	assert.Equal(t, p3, fwd)
	assert.Equal(t, 2, r.Remaining())

	p4, ok := r.Next()
	require.True(t, ok)
	assert.NotContains(t, []tracker.Person{p1, p2, p3}, p4)
	assert.Equal(t, 1, r.Remaining())
}

func TestRotationReset(t *testing.T) {
	r := NewRotation(team(), rand.New(rand.NewSource(3)))
	drawAll(r)

	r.Reset()
	assert.Empty(t, r.History())
	assert.Equal(t, 5, r.Remaining())
	_, ok := r.Current()
	assert.False(t, ok)
	pos, _ := r.Position()
	assert.Zero(t, pos)

	assert.Len(t, drawAll(r), 5)
}

func TestRotationEmptyTeam(t *testing.T) {
	r := NewRotation(nil, rand.New(rand.NewSource(1)))
	_, ok := r.Next()
	assert.False(t, ok)
	_, ok = r.Prev()
	assert.False(t, ok)
}

func TestRotationDoesNotAliasInput(t *testing.T) {
	people := team()
	r := NewRotation(people, rand.New(rand.NewSource(9)))
	drawAll(r)
	assert.Equal(t, team(), people)
}

func TestTickets(t *testing.T) {
	ada := tracker.Person{AccountID: "a1", DisplayName: "Ada"}
	other := &tracker.Person{AccountID: "a2"}
	issue := func(key, status string, assignee *tracker.Person) tracker.Issue {
		var i tracker.Issue
		i.Key = key
		i.Fields.Status.Name = status
		i.Fields.Assignee = assignee
		return i
	}
	issues := []tracker.Issue{
		issue("SD-1", "To Do", &ada),
		issue("SD-2", "Done", &ada),
		issue("SD-3", "In Progress", other),
		issue("SD-4", "In Progress", &ada),
		issue("SD-5", "In Review", nil),
	}

	var keys []string
	for _, i := range Tickets(issues, ada) {
		keys = append(keys, i.Key)
	}
	assert.Equal(t, []string{"SD-4", "SD-2", "SD-1"}, keys)
	assert.Empty(t, Tickets(issues, tracker.Person{AccountID: "nobody"}))
}
