package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/illarion/sprintdeck/internal/state"
	"github.com/illarion/sprintdeck/internal/tracker"
)

// Sprints lists the active and future sprints of the selected project
func Sprints(ctx context.Context) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, st := s.ClientOrExit(ctx)
	project := SelectedProjectOrExit(s, st)

	sprints, err := client.ProjectSprints(ctx, project.Key)
	if err != nil {
		HandleError(err)
	}
	s.State.Dispatch(ctx, state.SetSprints{Sprints: sprints})

	if len(sprints) == 0 {
		fmt.Printf("No active or future sprints in %s\n", project.Key)
		return
	}
	for _, sp := range sprints {
		fmt.Printf("%6d  %-8s %s\n", sp.ID, sp.State, sp.Name)
	}
}

// Issues lists the issues of a sprint ordered by status
func Issues(ctx context.Context, sprintArg string) {
	sprintID, err := strconv.Atoi(sprintArg)
	if err != nil {
		HandleError(fmt.Errorf("invalid sprint id %q", sprintArg))
	}

	s := OpenSessionOrExit()
	defer s.Close()

	client, _ := s.ClientOrExit(ctx)
	issues, err := client.SprintIssues(ctx, sprintID)
	if err != nil {
		HandleError(err)
	}
	s.State.Dispatch(ctx, state.SetIssues{Issues: issues})
	printIssues(tracker.SortByStatus(issues))
}

// Backlog lists every issue of the selected project
func Backlog(ctx context.Context) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, st := s.ClientOrExit(ctx)
	project := SelectedProjectOrExit(s, st)

	issues, err := client.Backlog(ctx, project.Key)
	if err != nil {
		HandleError(err)
	}
	printIssues(tracker.SortByStatus(issues))
}

// Members lists the people who can be assigned issues in the selected project
func Members(ctx context.Context) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, st := s.ClientOrExit(ctx)
	project := SelectedProjectOrExit(s, st)

	people, err := client.AssignableUsers(ctx, project.Key)
	if err != nil {
		HandleError(err)
	}
	s.State.Dispatch(ctx, state.SetPeople{People: people})

	if len(people) == 0 {
		fmt.Println("No members")
		return
	}
	for _, p := range people {
		if p.EmailAddress != "" {
			fmt.Printf("  %s <%s>\n", p.DisplayName, p.EmailAddress)
		} else {
			fmt.Printf("  %s\n", p.DisplayName)
		}
	}
}

func printIssues(issues []tracker.Issue) {
	if len(issues) == 0 {
		fmt.Println("No issues")
		return
	}
	for _, issue := range issues {
		fmt.Println(issueLine(issue))
	}
}

func issueLine(issue tracker.Issue) string {
	assignee := "unassigned"
	if issue.Fields.Assignee != nil {
		assignee = issue.Fields.Assignee.DisplayName
	}
	line := fmt.Sprintf("%-10s %-14s %-20s %s", issue.Key, issue.Fields.Status.Name, assignee, issue.Fields.Summary)
	if epic := issue.EpicName(); epic != "" {
		line += " [" + epic + "]"
	}
	return line
}
