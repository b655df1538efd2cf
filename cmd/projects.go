package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/sprintdeck/internal/state"
	"github.com/illarion/sprintdeck/internal/tracker"
	"github.com/illarion/sprintdeck/internal/vault"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Projects lists the projects visible with the stored credentials
func Projects(ctx context.Context) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, st := s.ClientOrExit(ctx)
	projects, err := client.Projects(ctx)
	if err != nil {
		HandleError(err)
	}
	s.State.Dispatch(ctx, state.SetProjects{Projects: projects})

	if len(projects) == 0 {
		fmt.Println("No projects visible")
		return
	}
	for _, p := range projects {
		marker := " "
		if st.SelectedProject != nil && st.SelectedProject.ID == p.ID {
			marker = "*"
		}
		fmt.Printf("%s %-10s %s\n", marker, p.Key, p.Name)
	}
}

// Select stores the project with the given key as the current selection
func Select(ctx context.Context, key string) {
	s := OpenSessionOrExit()
	defer s.Close()

	client, st := s.ClientOrExit(ctx)
	projects, err := client.Projects(ctx)
	if err != nil {
		HandleError(err)
	}

	var chosen *tracker.Project
	for i := range projects {
		if strings.EqualFold(projects[i].Key, key) {
			chosen = &projects[i]
			break
		}
	}
	if chosen == nil {
		fmt.Fprintf(os.Stderr, "Error: project %s not found\n", key)
		os.Exit(1)
	}

	candidate := vault.Project{ID: chosen.ID, Key: chosen.Key, Name: chosen.Name}
	if err := candidate.Validate(); err != nil {
		HandleError(err)
	}

	next := s.State.Dispatch(ctx, state.SetSelectedProject{Project: chosen})
	if next.Error != "" {
		HandleError(errors.New(next.Error))
	}

	if d := selectionDiff(st.SelectedProject, chosen); d != "" {
		fmt.Print(d)
	}
	fmt.Printf("Selected %s (%s)\n", chosen.Name, chosen.Key)
}

// selectionDiff renders a line diff between two project selections.
// It is empty when nothing changed.
func selectionDiff(prev, next *tracker.Project) string {
	before, after := projectJSON(prev), projectJSON(next)
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + line)
		}
	}
	return out.String()
}

func projectJSON(p *tracker.Project) string {
	if p == nil {
		return ""
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return ""
	}
	return string(data) + "\n"
}
