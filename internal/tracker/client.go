package tracker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Routing modes
const (
	ModeDirect = "direct"
	ModeProxy  = "proxy"
)

const DefaultProxyPath = "/api/proxy?path="

// DefaultFields are the issue fields requested for listings
var DefaultFields = []string{"summary", "status", "assignee", "reporter", "priority", "issuetype", "epic", "parent"}

var ErrMissingCredentials = errors.New("email and API token required")

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tracker: %s", e.Status)
	}
	return fmt.Sprintf("tracker: %s - %s", e.Status, e.Body)
}

// Config configures a Client
type Config struct {
	Domain    string
	Mode      string
	ProxyURL  string
	ProxyPath string
	Email     string
	APIToken  string
	Timeout   time.Duration
}

// Client talks to the tracker REST API
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// NewHTTPClient returns the HTTP client used for tracker requests
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: timeout}
}

// New creates a client. A nil httpClient uses NewHTTPClient.
func New(cfg Config, httpClient *http.Client, log zerolog.Logger) (*Client, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeDirect
	}
	if cfg.ProxyPath == "" {
		cfg.ProxyPath = DefaultProxyPath
	}
	switch cfg.Mode {
	case ModeDirect:
		if cfg.Domain == "" {
			return nil, fmt.Errorf("tracker domain not configured")
		}
	case ModeProxy:
		if cfg.ProxyURL == "" {
			return nil, fmt.Errorf("tracker proxy url not configured")
		}
	default:
		return nil, fmt.Errorf("unknown api mode %q", cfg.Mode)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg.Timeout)
	}
	return &Client{cfg: cfg, http: httpClient, log: log}, nil
}

// URL returns the full request URL for an API path such as /rest/api/3/project
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if c.cfg.Mode == ModeProxy {
		return strings.TrimRight(c.cfg.ProxyURL, "/") + c.cfg.ProxyPath + url.QueryEscape(path)
	}
	return strings.TrimRight(c.cfg.Domain, "/") + path
}

// authHeader builds the Basic authorization header value
func (c *Client) authHeader() (string, error) {
	if c.cfg.Email == "" || c.cfg.APIToken == "" {
		return "", ErrMissingCredentials
	}
	creds := base64.StdEncoding.EncodeToString([]byte(c.cfg.Email + ":" + c.cfg.APIToken))
	return "Basic " + creds, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	auth, err := c.authHeader()
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("tracker request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Projects lists the projects visible to the user
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/project", nil, &projects); err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	return projects, nil
}

// Boards lists the agile boards of a project
func (c *Client) Boards(ctx context.Context, projectKeyOrID string) ([]Board, error) {
	var page struct {
		Values []Board `json:"values"`
	}
	path := withQuery("/rest/agile/1.0/board", url.Values{"projectKeyOrId": {projectKeyOrID}})
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch boards: %w", err)
	}
	return page.Values, nil
}

// Sprints lists the active and future sprints of a board
func (c *Client) Sprints(ctx context.Context, boardID int) ([]Sprint, error) {
	var page struct {
		Values []Sprint `json:"values"`
	}
	path := withQuery("/rest/agile/1.0/board/"+strconv.Itoa(boardID)+"/sprint", url.Values{"state": {"active,future"}})
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch sprints: %w", err)
	}
	return page.Values, nil
}

// ProjectSprints lists the sprints of the project's first board.
// A project without boards has no sprints.
func (c *Client) ProjectSprints(ctx context.Context, projectKeyOrID string) ([]Sprint, error) {
	boards, err := c.Boards(ctx, projectKeyOrID)
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return nil, nil
	}
	return c.Sprints(ctx, boards[0].ID)
}

// SprintIssueKeys lists the keys of the issues in a sprint
func (c *Client) SprintIssueKeys(ctx context.Context, sprintID int) ([]string, error) {
	var page struct {
		Issues []struct {
			Key string `json:"key"`
		} `json:"issues"`
	}
	path := "/rest/agile/1.0/sprint/" + strconv.Itoa(sprintID) + "/issue"
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch sprint issues: %w", err)
	}
	keys := make([]string, 0, len(page.Issues))
	for _, issue := range page.Issues {
		keys = append(keys, issue.Key)
	}
	return keys, nil
}

// SearchIssues runs a JQL search. A non-positive maxResults uses the server default.
func (c *Client) SearchIssues(ctx context.Context, jql string, fields []string, maxResults int) ([]Issue, error) {
	q := url.Values{"jql": {jql}}
	if len(fields) > 0 {
		q.Set("fields", strings.Join(fields, ","))
	}
	if maxResults > 0 {
		q.Set("maxResults", strconv.Itoa(maxResults))
	}

	var page struct {
		Issues []Issue `json:"issues"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/rest/api/3/search", q), nil, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}
	return page.Issues, nil
}

// SprintIssues returns the issues of a sprint with their full listing fields
func (c *Client) SprintIssues(ctx context.Context, sprintID int) ([]Issue, error) {
	keys, err := c.SprintIssueKeys(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return c.SearchIssues(ctx, "key in ("+strings.Join(keys, ",")+")", DefaultFields, len(keys))
}

// Backlog returns every issue of a project
func (c *Client) Backlog(ctx context.Context, projectKey string) ([]Issue, error) {
	fields := append(append([]string(nil), DefaultFields...), "sprint")
	return c.SearchIssues(ctx, "project="+projectKey, fields, 1000)
}

// AssignableUsers lists the people who can be assigned issues in a project
func (c *Client) AssignableUsers(ctx context.Context, projectKey string) ([]Person, error) {
	var people []Person
	path := withQuery("/rest/api/3/user/assignable/search", url.Values{
		"project":    {projectKey},
		"maxResults": {"50"},
	})
	if err := c.do(ctx, http.MethodGet, path, nil, &people); err != nil {
		return nil, fmt.Errorf("failed to fetch project members: %w", err)
	}
	return people, nil
}

// Issue fetches a single issue
func (c *Client) Issue(ctx context.Context, issueKey string) (*Issue, error) {
	var issue Issue
	path := withQuery("/rest/api/3/issue/"+url.PathEscape(issueKey), url.Values{"fields": {strings.Join(DefaultFields, ",")}})
	if err := c.do(ctx, http.MethodGet, path, nil, &issue); err != nil {
		return nil, fmt.Errorf("failed to fetch issue %s: %w", issueKey, err)
	}
	return &issue, nil
}

// Transitions lists the status transitions available for an issue
func (c *Client) Transitions(ctx context.Context, issueKey string) ([]Transition, error) {
	var page struct {
		Transitions []Transition `json:"transitions"`
	}
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/transitions"
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch transitions: %w", err)
	}
	return page.Transitions, nil
}

// DoTransition moves an issue through a transition and returns the updated issue
func (c *Client) DoTransition(ctx context.Context, issueKey, transitionID string) (*Issue, error) {
	body := map[string]any{"transition": map[string]string{"id": transitionID}}
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/transitions"
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return c.Issue(ctx, issueKey)
}

// Comments lists the comments of an issue
func (c *Client) Comments(ctx context.Context, issueKey string) ([]Comment, error) {
	var page struct {
		Comments []Comment `json:"comments"`
	}
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/comment"
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return page.Comments, nil
}

// AddComment posts a plain-text comment on an issue
func (c *Client) AddComment(ctx context.Context, issueKey, text string) (*Comment, error) {
	var comment Comment
	body := map[string]any{"body": TextDocument(text)}
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/comment"
	if err := c.do(ctx, http.MethodPost, path, body, &comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &comment, nil
}
