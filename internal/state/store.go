package state

import (
	"context"
	"sync"

	"github.com/illarion/sprintdeck/internal/tracker"
	"github.com/illarion/sprintdeck/internal/vault"
	"github.com/rs/zerolog"
)

// Store owns the current State and mirrors credential and project
// selection changes into the vault.
type Store struct {
	mu    sync.RWMutex
	state State
	vault *vault.Vault
	log   zerolog.Logger
}

// NewStore creates an empty store backed by v
func NewStore(v *vault.Vault, log zerolog.Logger) *Store {
	return &Store{vault: v, log: log}
}

// Load hydrates the state from the vault. Fields that are absent, expired
// or unreadable stay empty.
func (s *Store) Load(ctx context.Context) State {
	creds := s.vault.GetCredentials(ctx)
	selected := s.vault.GetSelectedProject(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{}
	st = Reduce(st, SetProjectName{Name: creds.ProjectName})
	st = Reduce(st, SetDomain{Domain: creds.Domain})
	st = Reduce(st, SetEmail{Email: creds.Email})
	st = Reduce(st, SetAPIToken{Token: creds.APIToken})
	if selected != nil {
		st = Reduce(st, SetSelectedProject{Project: &tracker.Project{
			ID:   selected.ID,
			Key:  selected.Key,
			Name: selected.Name,
		}})
	}
	s.state = st
	return st
}

// State returns the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a and persists it when it touches a stored field.
// Persistence failures are logged and recorded in State.Error; the
// in-memory transition is applied regardless.
func (s *Store) Dispatch(ctx context.Context, a Action) State {
	if err := s.persist(ctx, a); err != nil {
		s.log.Error().Err(err).Msg("failed to persist state change")
		a = batch{a, SetError{Error: err.Error()}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = apply(s.state, a)
	return s.state
}

// SaveCredentials stores all credential fields at once
func (s *Store) SaveCredentials(ctx context.Context, c vault.Credentials) error {
	if err := s.vault.SetCredentials(ctx, c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = apply(s.state, batch{
		SetProjectName{Name: c.ProjectName},
		SetDomain{Domain: c.Domain},
		SetEmail{Email: c.Email},
		SetAPIToken{Token: c.APIToken},
		SetError{},
	})
	return nil
}

func (s *Store) persist(ctx context.Context, a Action) error {
	switch a := a.(type) {
	case SetProjectName:
		return s.vault.SetItem(ctx, vault.KeyProjectName, a.Name, vault.SetOptions{})
	case SetDomain:
		return s.vault.SetItem(ctx, vault.KeyDomain, a.Domain, vault.SetOptions{})
	case SetEmail:
		return s.vault.SetItem(ctx, vault.KeyEmail, a.Email, vault.SetOptions{Encrypt: true})
	case SetAPIToken:
		return s.vault.SetItem(ctx, vault.KeyAPIToken, a.Token, vault.SetOptions{Encrypt: true})
	case SetSelectedProject:
		if a.Project == nil {
			return s.vault.SetSelectedProject(ctx, nil)
		}
		return s.vault.SetSelectedProject(ctx, &vault.Project{
			ID:   a.Project.ID,
			Key:  a.Project.Key,
			Name: a.Project.Name,
		})
	}
	return nil
}

// batch applies several actions in order
type batch []Action

func (batch) action() {}

func apply(s State, a Action) State {
	if b, ok := a.(batch); ok {
		for _, each := range b {
			s = apply(s, each)
		}
		return s
	}
	return Reduce(s, a)
}
