package tracker

import (
	"sort"
	"strings"
)

type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Board struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Sprint struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

type Person struct {
	AccountID    string            `json:"accountId"`
	EmailAddress string            `json:"emailAddress"`
	DisplayName  string            `json:"displayName"`
	AvatarURLs   map[string]string `json:"avatarUrls,omitempty"`
}

type Named struct {
	Name string `json:"name"`
}

type Status struct {
	Name           string `json:"name"`
	StatusCategory struct {
		ColorName string `json:"colorName"`
	} `json:"statusCategory"`
}

type Epic struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

type Parent struct {
	Key    string `json:"key,omitempty"`
	Fields struct {
		Summary string `json:"summary"`
	} `json:"fields"`
}

type IssueFields struct {
	Summary   string  `json:"summary"`
	Status    Status  `json:"status"`
	Assignee  *Person `json:"assignee"`
	Reporter  *Person `json:"reporter"`
	Priority  *Named  `json:"priority"`
	IssueType Named   `json:"issuetype"`
	Epic      *Epic   `json:"epic,omitempty"`
	Parent    *Parent `json:"parent,omitempty"`
}

type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// EpicName returns the epic name, falling back to the parent summary
func (i Issue) EpicName() string {
	if i.Fields.Epic != nil && i.Fields.Epic.Name != "" {
		return i.Fields.Epic.Name
	}
	if i.Fields.Parent != nil {
		return i.Fields.Parent.Fields.Summary
	}
	return ""
}

type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to"`
}

type Comment struct {
	ID      string  `json:"id"`
	Author  *Person `json:"author"`
	Created string  `json:"created"`
	Body    ADFNode `json:"body"`
}

// ADFNode is a node of an Atlassian Document Format tree
type ADFNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Version int       `json:"version,omitempty"`
	Content []ADFNode `json:"content,omitempty"`
}

// PlainText flattens the document, one line per paragraph
func (n ADFNode) PlainText() string {
	var b strings.Builder
	n.writeText(&b)
	return strings.TrimSpace(b.String())
}

func (n ADFNode) writeText(b *strings.Builder) {
	if n.Type == "text" {
		b.WriteString(n.Text)
	}
	for _, c := range n.Content {
		c.writeText(b)
	}
	if n.Type == "paragraph" {
		b.WriteByte('\n')
	}
}

// TextDocument wraps plain text in a single-paragraph document
func TextDocument(text string) ADFNode {
	return ADFNode{
		Type:    "doc",
		Version: 1,
		Content: []ADFNode{{
			Type:    "paragraph",
			Content: []ADFNode{{Type: "text", Text: text}},
		}},
	}
}

// StatusRank orders statuses for display: active work first, unknown last
func StatusRank(status string) int {
	switch strings.ToLower(status) {
	case "in progress", "in-progress", "in development", "development":
		return 1
	case "in review", "review", "code review", "peer review":
		return 2
	case "done", "completed", "resolved", "closed":
		return 3
	case "blocked", "on hold", "waiting":
		return 4
	case "to do", "todo", "backlog", "open":
		return 5
	default:
		return 6
	}
}

// SortByStatus returns a copy of issues ordered by StatusRank
func SortByStatus(issues []Issue) []Issue {
	sorted := make([]Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(a, b int) bool {
		return StatusRank(sorted[a].Fields.Status.Name) < StatusRank(sorted[b].Fields.Status.Name)
	})
	return sorted
}

// PeopleFromIssues collects the distinct assignees and reporters of issues
// in first-seen order
func PeopleFromIssues(issues []Issue) []Person {
	var people []Person
	seen := make(map[string]bool)
	add := func(p *Person) {
		if p == nil || seen[p.AccountID] {
			return
		}
		seen[p.AccountID] = true
		people = append(people, *p)
	}
	for _, issue := range issues {
		add(issue.Fields.Assignee)
		add(issue.Fields.Reporter)
	}
	return people
}
