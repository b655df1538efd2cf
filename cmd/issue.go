package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/sprintdeck/internal/state"
	"github.com/illarion/sprintdeck/internal/tracker"
)

// Transitions lists the status transitions available for an issue
func Transitions(ctx context.Context, issueKey string) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, _ := s.ClientOrExit(ctx)
	transitions, err := client.Transitions(ctx, issueKey)
	if err != nil {
		HandleError(err)
	}
	if len(transitions) == 0 {
		fmt.Printf("No transitions available for %s\n", issueKey)
		return
	}
	for _, t := range transitions {
		fmt.Printf("%6s  %-20s -> %s\n", t.ID, t.Name, t.To.Name)
	}
}

// Transition moves an issue. target is a transition ID, a transition name
// or a target status name.
func Transition(ctx context.Context, issueKey, target string) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, _ := s.ClientOrExit(ctx)
	transitions, err := client.Transitions(ctx, issueKey)
	if err != nil {
		HandleError(err)
	}

	t := findTransition(transitions, target)
	if t == nil {
		fmt.Fprintf(os.Stderr, "Error: no transition %q for %s\n", target, issueKey)
		fmt.Fprintf(os.Stderr, "Use 'sprintdeck transitions %s' to list them\n", issueKey)
		os.Exit(1)
	}

	issue, err := client.DoTransition(ctx, issueKey, t.ID)
	if err != nil {
		HandleError(err)
	}
	s.State.Dispatch(ctx, state.UpdateIssue{Issue: *issue})
	fmt.Printf("%s is now %s\n", issue.Key, issue.Fields.Status.Name)
}

func findTransition(transitions []tracker.Transition, target string) *tracker.Transition {
	for i := range transitions {
		if transitions[i].ID == target {
			return &transitions[i]
		}
	}
	for i := range transitions {
		if strings.EqualFold(transitions[i].Name, target) || strings.EqualFold(transitions[i].To.Name, target) {
			return &transitions[i]
		}
	}
	return nil
}

// Comments prints the comments of an issue
func Comments(ctx context.Context, issueKey string) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, _ := s.ClientOrExit(ctx)
	comments, err := client.Comments(ctx, issueKey)
	if err != nil {
		HandleError(err)
	}
	if len(comments) == 0 {
		fmt.Printf("No comments on %s\n", issueKey)
		return
	}
	for _, c := range comments {
		author := "unknown"
		if c.Author != nil {
			author = c.Author.DisplayName
		}
		fmt.Printf("%s (%s):\n", author, c.Created)
		for _, line := range strings.Split(c.Body.PlainText(), "\n") {
			fmt.Printf("  %s\n", line)
		}
	}
}

// Comment adds a plain-text comment to an issue
func Comment(ctx context.Context, issueKey, text string) {
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "Error: comment text must not be empty")
		os.Exit(1)
	}

	s := OpenSessionOrExit()
	defer s.Close()

	client, _ := s.ClientOrExit(ctx)
	c, err := client.AddComment(ctx, issueKey, text)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Comment %s added to %s\n", c.ID, issueKey)
}
