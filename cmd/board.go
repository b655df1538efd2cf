package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/illarion/sprintdeck/internal/state"
	"github.com/illarion/sprintdeck/internal/tracker"
)

// Board shows the current sprint of the selected project grouped by
// status. With watch set it refreshes every interval until interrupted,
// sweeping expired session items in the background.
func Board(ctx context.Context, sprintID int, watch bool, interval time.Duration) {
	s := OpenSessionOrExit()
	defer s.Close()

	if !watch {
		if err := renderBoard(ctx, s, sprintID); err != nil {
			HandleError(err)
		}
		return
	}

	// Close stops the sweeper
	s.Vault.Start(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := renderBoard(ctx, s, sprintID); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			// credentials can expire while watching
			if errors.Is(err, ErrNotConfigured) {
				fmt.Println("Session expired, run 'sprintdeck login'")
				return
			}
			s.Log.Warn().Err(err).Msg("board refresh failed")
			s.State.Dispatch(ctx, state.SetError{Error: err.Error()})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func renderBoard(ctx context.Context, s *Session, sprintID int) error {
	client, st, err := s.Client(ctx)
	if err != nil {
		return err
	}
	if st.SelectedProject == nil {
		return fmt.Errorf("no project selected, run 'sprintdeck select <KEY>'")
	}
	project := st.SelectedProject

	s.State.Dispatch(ctx, state.SetLoading{Loading: true})
	defer s.State.Dispatch(ctx, state.SetLoading{Loading: false})

	sprints, err := client.ProjectSprints(ctx, project.Key)
	if err != nil {
		return err
	}
	s.State.Dispatch(ctx, state.SetSprints{Sprints: sprints})

	sprint := pickSprint(sprints, sprintID)
	if sprint == nil {
		fmt.Printf("%s: no active sprint\n", project.Name)
		return nil
	}
	s.State.Dispatch(ctx, state.SetSelectedSprint{Sprint: sprint})

	issues, err := client.SprintIssues(ctx, sprint.ID)
	if err != nil {
		return err
	}
	s.State.Dispatch(ctx, state.SetIssues{Issues: issues})
	st = s.State.Dispatch(ctx, state.SetPeople{People: tracker.PeopleFromIssues(issues)})

	fmt.Printf("%s / %s (%s) - %d issue(s), %d people\n",
		project.Name, sprint.Name, sprint.State, len(st.Issues), len(st.People))

	status := ""
	for _, issue := range tracker.SortByStatus(st.Issues) {
		if issue.Fields.Status.Name != status {
			status = issue.Fields.Status.Name
			fmt.Printf("\n%s\n", status)
		}
		fmt.Printf("  %s\n", issueLine(issue))
	}
	fmt.Println()
	return nil
}

// pickSprint returns the sprint with the given ID, or the first active
// sprint when id is zero
func pickSprint(sprints []tracker.Sprint, id int) *tracker.Sprint {
	for i := range sprints {
		if id != 0 && sprints[i].ID == id {
			return &sprints[i]
		}
		if id == 0 && sprints[i].State == "active" {
			return &sprints[i]
		}
	}
	return nil
}
