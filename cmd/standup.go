package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/illarion/sprintdeck/internal/prompt"
	"github.com/illarion/sprintdeck/internal/standup"
	"github.com/illarion/sprintdeck/internal/state"
	"github.com/illarion/sprintdeck/internal/tracker"
)

// Standup walks the people of the sprint in random order and shows the
// tickets of each one. With all set the whole order is printed at once,
// otherwise the rotation is driven interactively.
func Standup(ctx context.Context, sprintID int, all bool, seed int64) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, st := s.ClientOrExit(ctx)
	project := SelectedProjectOrExit(s, st)

	sprints, err := client.ProjectSprints(ctx, project.Key)
	if err != nil {
		HandleError(err)
	}
	sprint := pickSprint(sprints, sprintID)
	if sprint == nil {
		fmt.Printf("%s: no active sprint\n", project.Name)
		return
	}
	s.State.Dispatch(ctx, state.SetSelectedSprint{Sprint: sprint})

	issues, err := client.SprintIssues(ctx, sprint.ID)
	if err != nil {
		HandleError(err)
	}
	st = s.State.Dispatch(ctx, state.SetPeople{People: tracker.PeopleFromIssues(issues)})
	if len(st.People) == 0 {
		fmt.Printf("%s / %s: nobody to call on\n", project.Name, sprint.Name)
		return
	}

	fmt.Printf("%s / %s - %d people\n", project.Name, sprint.Name, len(st.People))
	rot := standup.NewRotation(st.People, rand.New(rand.NewSource(seed)))

	if all {
		printRotation(os.Stdout, rot, issues)
		return
	}
	ask := func() (string, error) {
		return prompt.ReadLine("[n]ext [p]rev [r]eset [q]uit", "n")
	}
	if err := standupLoop(os.Stdout, rot, issues, ask); err != nil {
		HandleError(err)
	}
}

// printRotation draws everyone and prints them in speaking order
func printRotation(w io.Writer, rot *standup.Rotation, issues []tracker.Issue) {
	for {
		if _, ok := rot.Draw(); !ok {
			return
		}
		printMember(w, rot, issues)
	}
}

// standupLoop draws the first member and then follows the answers from ask
// until quit or end of input
func standupLoop(w io.Writer, rot *standup.Rotation, issues []tracker.Issue, ask func() (string, error)) error {
	if _, ok := rot.Next(); ok {
		printMember(w, rot, issues)
	}

	for {
		answer, err := ask()
		if err != nil {
			fmt.Fprintln(w)
			return nil
		}

		switch strings.ToLower(answer) {
		case "n", "next":
			if _, ok := rot.Next(); !ok {
				fmt.Fprintln(w, "Everyone has had their turn")
				continue
			}
		case "p", "prev":
			if _, ok := rot.Prev(); !ok {
				fmt.Fprintln(w, "Already at the first person")
				continue
			}
		case "r", "reset":
			rot.Reset()
			fmt.Fprintln(w, "Rotation reset")
			if _, ok := rot.Next(); !ok {
				continue
			}
		case "q", "quit":
			return nil
		default:
			fmt.Fprintf(w, "Unknown answer %q\n", answer)
			continue
		}
		printMember(w, rot, issues)
	}
}

func printMember(w io.Writer, rot *standup.Rotation, issues []tracker.Issue) {
	p, ok := rot.Current()
	if !ok {
		return
	}
	pos, size := rot.Position()
	name := p.DisplayName
	if name == "" {
		name = p.AccountID
	}
	fmt.Fprintf(w, "\n[%d/%d] %s\n", pos, size, name)

	tickets := standup.Tickets(issues, p)
	if len(tickets) == 0 {
		fmt.Fprintln(w, "  (no tickets)")
		return
	}
	for _, issue := range tickets {
		fmt.Fprintf(w, "  %s\n", issueLine(issue))
	}
}
