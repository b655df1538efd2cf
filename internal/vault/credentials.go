package vault

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Storage keys used by the domain wrappers
const (
	KeyProjectName     = "jira-project-name"
	KeyDomain          = "jira-domain"
	KeyEmail           = "jira-email"
	KeyAPIToken        = "jira-api-token"
	KeySelectedProject = "jira-selected-project"
)

// Credentials are the values needed to talk to the tracker.
// Email and APIToken are always stored encrypted.
type Credentials struct {
	ProjectName string
	Domain      string
	Email       string
	APIToken    string
}

// Configured reports whether enough is stored to authenticate
func (c Credentials) Configured() bool {
	return c.Domain != "" && c.Email != "" && c.APIToken != ""
}

// Project is the persisted project selection
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Validate checks that every field is present
func (p *Project) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return &ValidationError{Field: "project.id", Reason: "must not be empty"}
	case strings.TrimSpace(p.Key) == "":
		return &ValidationError{Field: "project.key", Reason: "must not be empty"}
	case strings.TrimSpace(p.Name) == "":
		return &ValidationError{Field: "project.name", Reason: "must not be empty"}
	}
	return nil
}

// SetCredentials stores all four credential fields concurrently
func (v *Vault) SetCredentials(ctx context.Context, c Credentials) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return v.SetItem(ctx, KeyProjectName, c.ProjectName, SetOptions{})
	})
	g.Go(func() error {
		return v.SetItem(ctx, KeyDomain, c.Domain, SetOptions{})
	})
	g.Go(func() error {
		return v.SetItem(ctx, KeyEmail, c.Email, SetOptions{Encrypt: true})
	})
	g.Go(func() error {
		return v.SetItem(ctx, KeyAPIToken, c.APIToken, SetOptions{Encrypt: true})
	})
	return g.Wait()
}

// GetCredentials reads all four credential fields concurrently.
// Absent or unreadable fields come back empty.
func (v *Vault) GetCredentials(ctx context.Context) Credentials {
	var (
		c Credentials
		g errgroup.Group
	)
	read := func(key string, dst *string) {
		g.Go(func() error {
			*dst, _ = v.GetItem(ctx, key)
			return nil
		})
	}
	read(KeyProjectName, &c.ProjectName)
	read(KeyDomain, &c.Domain)
	read(KeyEmail, &c.Email)
	read(KeyAPIToken, &c.APIToken)
	_ = g.Wait()
	return c
}

// ClearCredentials removes the credentials and the project selection
func (v *Vault) ClearCredentials() {
	for _, key := range []string{KeyProjectName, KeyDomain, KeyEmail, KeyAPIToken, KeySelectedProject} {
		v.RemoveItem(key)
	}
}

// SetSelectedProject stores the project selection. A nil project clears it.
// Malformed projects are rejected with *ValidationError before any write.
func (v *Vault) SetSelectedProject(ctx context.Context, p *Project) error {
	if p == nil {
		v.RemoveItem(KeySelectedProject)
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return &StorageError{Op: "serialize", Key: KeySelectedProject, Err: err}
	}
	return v.SetItem(ctx, KeySelectedProject, string(data), SetOptions{})
}

// GetSelectedProject returns the stored project selection, or nil
func (v *Vault) GetSelectedProject(ctx context.Context) *Project {
	raw, ok := v.GetItem(ctx, KeySelectedProject)
	if !ok {
		return nil
	}

	var p Project
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		v.log.Warn().Err(&CorruptionError{Key: KeySelectedProject, Err: err}).Msg("failed to parse selected project")
		v.RemoveItem(KeySelectedProject)
		return nil
	}
	if err := p.Validate(); err != nil {
		v.log.Warn().Err(&CorruptionError{Key: KeySelectedProject, Err: err}).Msg("stored selected project is invalid")
		v.RemoveItem(KeySelectedProject)
		return nil
	}
	return &p
}
