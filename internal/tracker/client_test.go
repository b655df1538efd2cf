package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		Domain:   srv.URL,
		Email:    "dev@example.com",
		APIToken: "token",
	}, srv.Client(), zerolog.Nop())
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{}, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(Config{Mode: ModeProxy}, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(Config{Mode: "carrier-pigeon", Domain: "https://x"}, nil, zerolog.Nop())
	assert.Error(t, err)

	c, err := New(Config{Domain: "https://acme.atlassian.net"}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, c.http)
}

func TestURL(t *testing.T) {
	direct, err := New(Config{Domain: "https://acme.atlassian.net/"}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://acme.atlassian.net/rest/api/3/project", direct.URL("/rest/api/3/project"))
	assert.Equal(t, "https://acme.atlassian.net/rest/api/3/project", direct.URL("rest/api/3/project"))

	proxy, err := New(Config{Mode: ModeProxy, ProxyURL: "http://localhost:3000/"}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t,
		"http://localhost:3000/api/proxy?path=%2Frest%2Fagile%2F1.0%2Fboard%3FprojectKeyOrId%3DDEV",
		proxy.URL("/rest/agile/1.0/board?projectKeyOrId=DEV"))
}

func TestMissingCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c, err := New(Config{Domain: srv.URL}, srv.Client(), zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Projects(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.False(t, called)
}

func TestProjects(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/project", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "dev@example.com", user)
		assert.Equal(t, "token", pass)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(t, w, []Project{{ID: "10001", Key: "DEV", Name: "Development"}})
	})

	projects, err := c.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "DEV", projects[0].Key)
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not allowed", http.StatusForbidden)
	})

	_, err := c.Projects(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "not allowed", apiErr.Body)
}

func TestProjectSprints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/agile/1.0/board":
			assert.Equal(t, "DEV", r.URL.Query().Get("projectKeyOrId"))
			writeJSON(t, w, map[string]any{"values": []Board{{ID: 7, Name: "DEV board"}, {ID: 9}}})
		case "/rest/agile/1.0/board/7/sprint":
			assert.Equal(t, "active,future", r.URL.Query().Get("state"))
			writeJSON(t, w, map[string]any{"values": []Sprint{{ID: 3, Name: "Sprint 3", State: "active"}}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	sprints, err := c.ProjectSprints(context.Background(), "DEV")
	require.NoError(t, err)
	require.Len(t, sprints, 1)
	assert.Equal(t, "Sprint 3", sprints[0].Name)
}

func TestProjectSprintsNoBoards(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"values": []Board{}})
	})

	sprints, err := c.ProjectSprints(context.Background(), "DEV")
	require.NoError(t, err)
	assert.Empty(t, sprints)
}

func TestSprintIssues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/agile/1.0/sprint/3/issue":
			writeJSON(t, w, map[string]any{"issues": []map[string]string{{"key": "DEV-1"}, {"key": "DEV-2"}}})
		case "/rest/api/3/search":
			q := r.URL.Query()
			assert.Equal(t, "key in (DEV-1,DEV-2)", q.Get("jql"))
			assert.Equal(t, "2", q.Get("maxResults"))
			assert.Contains(t, q.Get("fields"), "assignee")
			writeJSON(t, w, map[string]any{"issues": []map[string]any{
				{"key": "DEV-1", "fields": map[string]any{"summary": "one", "status": map[string]any{"name": "Done"}}},
				{"key": "DEV-2", "fields": map[string]any{"summary": "two", "status": map[string]any{"name": "In Progress"}}},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	issues, err := c.SprintIssues(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "two", issues[1].Fields.Summary)
}

func TestSprintIssuesEmptySkipsSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/3/search" {
			t.Error("search must not run for an empty sprint")
		}
		writeJSON(t, w, map[string]any{"issues": []any{}})
	})

	issues, err := c.SprintIssues(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestBacklogAndMembers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/rest/api/3/search":
			assert.Equal(t, "project=DEV", q.Get("jql"))
			assert.Equal(t, "1000", q.Get("maxResults"))
			assert.Contains(t, q.Get("fields"), "sprint")
			writeJSON(t, w, map[string]any{"issues": []map[string]any{{"key": "DEV-9"}}})
		case "/rest/api/3/user/assignable/search":
			assert.Equal(t, "DEV", q.Get("project"))
			assert.Equal(t, "50", q.Get("maxResults"))
			writeJSON(t, w, []Person{{AccountID: "a1", DisplayName: "Ada"}})
		}
	})

	backlog, err := c.Backlog(context.Background(), "DEV")
	require.NoError(t, err)
	require.Len(t, backlog, 1)

	members, err := c.AssignableUsers(context.Background(), "DEV")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ada", members[0].DisplayName)
}

func TestDoTransition(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/3/issue/DEV-1/transitions":
			var body struct {
				Transition struct {
					ID string `json:"id"`
				} `json:"transition"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "31", body.Transition.ID)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/rest/api/3/issue/DEV-1":
			writeJSON(t, w, map[string]any{"key": "DEV-1", "fields": map[string]any{"status": map[string]any{"name": "Done"}}})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	issue, err := c.DoTransition(context.Background(), "DEV-1", "31")
	require.NoError(t, err)
	assert.Equal(t, "Done", issue.Fields.Status.Name)
}

func TestTransitions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"transitions": []map[string]any{
			{"id": "11", "name": "Start", "to": map[string]any{"name": "In Progress"}},
		}})
	})

	ts, err := c.Transitions(context.Background(), "DEV-1")
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "In Progress", ts[0].To.Name)
}

func TestComments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/DEV-1/comment", r.URL.Path)
		if r.Method == http.MethodPost {
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.True(t, strings.Contains(string(data), `"type":"doc"`))
			assert.True(t, strings.Contains(string(data), `"text":"looks good"`))
			writeJSON(t, w, map[string]any{"id": "100", "body": TextDocument("looks good")})
			return
		}
		writeJSON(t, w, map[string]any{"comments": []any{
			map[string]any{"id": "99", "author": map[string]any{"displayName": "Ada"}, "body": TextDocument("first")},
		}})
	})

	comments, err := c.Comments(context.Background(), "DEV-1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Body.PlainText())

	added, err := c.AddComment(context.Background(), "DEV-1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, "100", added.ID)
	assert.Equal(t, "looks good", added.Body.PlainText())
}

func TestProxyModeRoutesThroughProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/proxy", r.URL.Path)
		assert.Equal(t, "/rest/api/3/project", r.URL.Query().Get("path"))
		writeJSON(t, w, []Project{})
	}))
	defer srv.Close()

	c, err := New(Config{
		Mode:     ModeProxy,
		ProxyURL: srv.URL,
		Email:    "dev@example.com",
		APIToken: "token",
	}, srv.Client(), zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Projects(context.Background())
	require.NoError(t, err)
}
