package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/illarion/sprintdeck/internal/config"
	"github.com/illarion/sprintdeck/internal/keyring"
	"github.com/illarion/sprintdeck/internal/log"
	"github.com/illarion/sprintdeck/internal/state"
	"github.com/illarion/sprintdeck/internal/storage"
	"github.com/illarion/sprintdeck/internal/tracker"
	"github.com/illarion/sprintdeck/internal/vault"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrNotConfigured means no usable credentials are stored in the session
var ErrNotConfigured = errors.New("not configured")

// Session bundles everything a command needs: configuration, logger,
// the underlying store and the vault on top of it.
type Session struct {
	Config   config.Config
	Log      log.Logger
	Vault    *vault.Vault
	State    *state.Store
	Registry *prometheus.Registry
	Swept    int // items removed by the sweep at open

	store storage.Store
	bolt  *storage.BoltStore
}

// OpenSession loads configuration, opens the session store and sweeps
// expired items from it
func OpenSession() (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := log.NewLogger(cfg)

	s := &Session{
		Config:   cfg,
		Log:      logger,
		Registry: prometheus.NewRegistry(),
	}

	if cfg.Store.Ephemeral {
		s.store = storage.NewMemoryStore()
	} else {
		db, err := storage.OpenBolt(cfg.Store.Path, cfg.Store.Session)
		if err != nil {
			return nil, err
		}
		s.bolt = db
		s.store = db
	}

	s.Vault = vault.New(s.store,
		vault.WithPassphrase(resolvePassphrase(cfg, logger)),
		vault.WithSessionTimeout(cfg.SessionTimeout()),
		vault.WithSweepInterval(cfg.Vault.SweepInterval),
		vault.WithIterations(cfg.Vault.Iterations),
		vault.WithLogger(logger),
		vault.WithMetrics(s.Registry),
	)
	s.Swept = s.Vault.Cleanup(context.Background())
	s.State = state.NewStore(s.Vault, logger)
	return s, nil
}

// OpenSessionOrExit is like OpenSession but exits on error
func OpenSessionOrExit() *Session {
	s, err := OpenSession()
	if err != nil {
		HandleError(err)
	}
	return s
}

// resolvePassphrase picks the vault passphrase: configuration first,
// then the OS keyring. An empty result selects the vault default.
func resolvePassphrase(cfg config.Config, logger log.Logger) string {
	if cfg.Vault.Passphrase != "" {
		return cfg.Vault.Passphrase
	}
	if cfg.Store.Ephemeral {
		return ""
	}
	passphrase, err := keyring.GetPassphrase(cfg.Store.Path)
	if err != nil {
		if !keyring.IsNotFound(err) {
			logger.Debug().Err(err).Msg("keyring unavailable")
		}
		return ""
	}
	return passphrase
}

// Close runs the final sweep, wipes the vault passphrase and releases
// the store
func (s *Session) Close() {
	s.Vault.Close()
	if s.bolt != nil {
		if err := s.bolt.Close(); err != nil {
			s.Log.Error().Err(err).Msg("failed to close store")
		}
	}
}

// Bolt returns the on-disk store, or nil for ephemeral sessions
func (s *Session) Bolt() *storage.BoltStore {
	return s.bolt
}

// Client loads the stored credentials and builds a tracker client from them
func (s *Session) Client(ctx context.Context) (*tracker.Client, state.State, error) {
	st := s.State.Load(ctx)
	if !st.Configured() {
		return nil, st, ErrNotConfigured
	}

	client, err := tracker.New(tracker.Config{
		Domain:    st.Domain,
		Mode:      s.Config.Tracker.Mode,
		ProxyURL:  s.Config.Tracker.ProxyURL,
		ProxyPath: config.DefaultProxyPath,
		Email:     st.Email,
		APIToken:  st.APIToken,
		Timeout:   time.Duration(s.Config.Tracker.TimeoutSeconds) * time.Second,
	}, nil, s.Log)
	if err != nil {
		return nil, st, err
	}
	return client, st, nil
}

// ClientOrExit is like Client but exits on error
func (s *Session) ClientOrExit(ctx context.Context) (*tracker.Client, state.State) {
	client, st, err := s.Client(ctx)
	if err != nil {
		s.Close()
		HandleError(err)
	}
	return client, st
}

// SelectedProjectOrExit returns the selected project or exits with a hint
func SelectedProjectOrExit(s *Session, st state.State) *tracker.Project {
	if st.SelectedProject == nil {
		s.Close()
		fmt.Fprintf(os.Stderr, "Error: no project selected\n")
		fmt.Fprintf(os.Stderr, "Run 'sprintdeck projects' and 'sprintdeck select <KEY>'\n")
		os.Exit(1)
	}
	return st.SelectedProject
}

// HandleError handles common errors consistently
func HandleError(err error) {
	var apiErr *tracker.APIError
	switch {
	case errors.Is(err, ErrNotConfigured), errors.Is(err, tracker.ErrMissingCredentials):
		fmt.Fprintf(os.Stderr, "Error: not configured, run 'sprintdeck login'\n")
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		fmt.Fprintf(os.Stderr, "Error: credentials rejected by the tracker\n")
		fmt.Fprintf(os.Stderr, "Run 'sprintdeck login' to update them\n")
	case errors.Is(err, vault.ErrValidation):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, vault.ErrStorage):
		fmt.Fprintf(os.Stderr, "Error: could not save to the session store: %s\n", err)
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "Interrupted\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

// maskToken hides all but the last four characters of a secret
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// formatAge formats a duration in human-readable form
func formatAge(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// counterValues returns the vault counters gathered from reg, keyed by
// metric name and labels
func counterValues(reg prometheus.Gatherer) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			if len(labels) > 0 {
				sort.Strings(labels)
				name += "{" + strings.Join(labels, ",") + "}"
			}
			values[name] = m.GetCounter().GetValue()
		}
	}
	return values, nil
}
