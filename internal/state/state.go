// Package state holds the application state of a sprintdeck session and the
// reducer that evolves it. Reduce is pure; persistence is done by Store.
package state

import (
	"github.com/illarion/sprintdeck/internal/tracker"
)

// State is a snapshot of everything the board view needs
type State struct {
	ProjectName     string
	Domain          string
	Email           string
	APIToken        string
	Projects        []tracker.Project
	SelectedProject *tracker.Project
	Sprints         []tracker.Sprint
	SelectedSprint  *tracker.Sprint
	Issues          []tracker.Issue
	People          []tracker.Person
	Loading         bool
	Error           string
}

// Configured reports whether the state carries usable credentials
func (s State) Configured() bool {
	return s.Domain != "" && s.Email != "" && s.APIToken != ""
}

// Action is a state transition understood by Reduce
type Action interface {
	action()
}

type (
	SetProjectName     struct{ Name string }
	SetDomain          struct{ Domain string }
	SetEmail           struct{ Email string }
	SetAPIToken        struct{ Token string }
	SetProjects        struct{ Projects []tracker.Project }
	SetSelectedProject struct{ Project *tracker.Project }
	SetSprints         struct{ Sprints []tracker.Sprint }
	SetSelectedSprint  struct{ Sprint *tracker.Sprint }
	SetIssues          struct{ Issues []tracker.Issue }
	UpdateIssue        struct{ Issue tracker.Issue }
	SetPeople          struct{ People []tracker.Person }
	SetLoading         struct{ Loading bool }
	SetError           struct{ Error string }
)

func (SetProjectName) action()     {}
func (SetDomain) action()          {}
func (SetEmail) action()           {}
func (SetAPIToken) action()        {}
func (SetProjects) action()        {}
func (SetSelectedProject) action() {}
func (SetSprints) action()         {}
func (SetSelectedSprint) action()  {}
func (SetIssues) action()          {}
func (UpdateIssue) action()        {}
func (SetPeople) action()          {}
func (SetLoading) action()         {}
func (SetError) action()           {}

// Reduce returns the state that results from applying a to s.
// Unknown actions leave the state unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetProjectName:
		s.ProjectName = a.Name
	case SetDomain:
		s.Domain = a.Domain
	case SetEmail:
		s.Email = a.Email
	case SetAPIToken:
		s.APIToken = a.Token
	case SetProjects:
		s.Projects = a.Projects
	case SetSelectedProject:
		// sprints belong to the previous project
		s.SelectedProject = a.Project
		s.Sprints = nil
		s.SelectedSprint = nil
	case SetSprints:
		s.Sprints = a.Sprints
	case SetSelectedSprint:
		s.SelectedSprint = a.Sprint
	case SetIssues:
		s.Issues = a.Issues
	case UpdateIssue:
		issues := make([]tracker.Issue, len(s.Issues))
		for i, issue := range s.Issues {
			if issue.ID == a.Issue.ID {
				issue = a.Issue
			}
			issues[i] = issue
		}
		s.Issues = issues
	case SetPeople:
		s.People = a.People
	case SetLoading:
		s.Loading = a.Loading
	case SetError:
		s.Error = a.Error
	}
	return s
}
