package vault

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/illarion/sprintdeck/internal/crypto"
	"github.com/illarion/sprintdeck/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	DefaultPassphrase     = "default-key-change-in-production"
	DefaultSessionTimeout = 60 * time.Minute
	DefaultSweepInterval  = 5 * time.Minute
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Ticker delivers the background sweep ticks
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

func newSystemTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

// Option configures a Vault
type Option func(*Vault)

// WithPassphrase sets the static encryption passphrase
func WithPassphrase(passphrase string) Option {
	return func(v *Vault) { v.passphrase = passphrase }
}

// WithSessionTimeout sets the maximum age of any stored item
func WithSessionTimeout(d time.Duration) Option {
	return func(v *Vault) { v.sessionTimeout = d }
}

// WithSweepInterval sets how often the background sweep runs after Start
func WithSweepInterval(d time.Duration) Option {
	return func(v *Vault) { v.sweepInterval = d }
}

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(v *Vault) { v.clock = c }
}

// WithTicker replaces the ticker factory that schedules the background sweep
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(v *Vault) { v.newTicker = newTicker }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(v *Vault) { v.log = l }
}

// WithMetrics registers the vault counters with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(v *Vault) { v.registerer = reg }
}

// WithIterations sets the PBKDF2 iteration count (never below crypto.MinIterations)
func WithIterations(n int) Option {
	return func(v *Vault) { v.iterations = n }
}

// SetOptions controls a single write
type SetOptions struct {
	Encrypt   bool
	ExpiresIn time.Duration // zero means only the session timeout applies
}

// Vault is a session-scoped encrypted key/value store. It is safe for
// concurrent use; operations on the same key are serialized.
type Vault struct {
	store          storage.Store
	sealer         *crypto.Sealer
	passphrase     string
	iterations     int
	sessionTimeout time.Duration
	sweepInterval  time.Duration
	clock          Clock
	newTicker      func(time.Duration) Ticker
	log            zerolog.Logger
	registerer     prometheus.Registerer
	metrics        *metrics
	keys           *keyLocks

	lifecycle sync.Mutex
	stopSweep context.CancelFunc
	sweepDone chan struct{}
}

// New creates a vault over store
func New(store storage.Store, opts ...Option) *Vault {
	v := &Vault{
		store:          store,
		iterations:     crypto.MinIterations,
		sessionTimeout: DefaultSessionTimeout,
		sweepInterval:  DefaultSweepInterval,
		clock:          systemClock{},
		newTicker:      newSystemTicker,
		log:            zerolog.Nop(),
		keys:           newKeyLocks(),
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.passphrase == "" {
		v.passphrase = DefaultPassphrase
	}
	if v.passphrase == DefaultPassphrase {
		v.log.Warn().Msg("using default encryption passphrase, set SPRINTDECK_ENCRYPTION_KEY")
	}
	if v.sessionTimeout <= 0 {
		v.sessionTimeout = DefaultSessionTimeout
	}
	if v.sweepInterval <= 0 {
		v.sweepInterval = DefaultSweepInterval
	}

	v.sealer = crypto.NewSealer([]byte(v.passphrase), v.iterations)
	v.metrics = newMetrics(v.registerer)
	return v
}

// SessionTimeout returns the configured session timeout
func (v *Vault) SessionTimeout() time.Duration {
	return v.sessionTimeout
}

// SetItem stores value under key, replacing any previous envelope.
// Store and serialization failures are returned as *StorageError.
func (v *Vault) SetItem(ctx context.Context, key, value string, opts SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := value
	if opts.Encrypt {
		blob, err := v.sealer.Encrypt(value)
		if err != nil {
			return &StorageError{Op: "encrypt", Key: key, Err: err}
		}
		data, err := json.Marshal(blob)
		if err != nil {
			return &StorageError{Op: "serialize", Key: key, Err: err}
		}
		payload = string(data)
	}

	now := v.clock.Now()
	item := Item{
		Value:     payload,
		Timestamp: now.UnixMilli(),
		Encrypted: opts.Encrypt,
	}
	if opts.ExpiresIn > 0 {
		deadline := now.Add(opts.ExpiresIn).UnixMilli()
		item.ExpiresAt = &deadline
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return &StorageError{Op: "serialize", Key: key, Err: err}
	}

	unlock := v.keys.lock(key)
	defer unlock()

	if err := v.store.SetItem(key, string(raw)); err != nil {
		return &StorageError{Op: "store", Key: key, Err: err}
	}
	v.metrics.writes.WithLabelValues(strconv.FormatBool(opts.Encrypt)).Inc()
	return nil
}

// GetItem returns the value stored under key. Missing, expired, corrupted
// and undecryptable items are all reported as absent; the latter three are
// removed from the store.
func (v *Vault) GetItem(ctx context.Context, key string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}

	unlock := v.keys.lock(key)
	defer unlock()

	raw, found, err := v.store.GetItem(key)
	if err != nil {
		v.log.Error().Err(&StorageError{Op: "read", Key: key, Err: err}).Msg("failed to retrieve item")
		return "", false
	}
	if !found {
		return "", false
	}

	item, err := parseItem(raw)
	if err != nil {
		v.purge(key, reasonCorrupt, &CorruptionError{Key: key, Err: err})
		return "", false
	}

	if item.Expired(v.clock.Now(), v.sessionTimeout) {
		v.purge(key, reasonExpired, nil)
		return "", false
	}

	if !item.Encrypted {
		return item.Value, true
	}

	var blob crypto.Blob
	if err := json.Unmarshal([]byte(item.Value), &blob); err != nil {
		v.purge(key, reasonCorrupt, &CorruptionError{Key: key, Err: err})
		return "", false
	}

	plaintext, err := v.sealer.Decrypt(&blob)
	if errors.Is(err, crypto.ErrDestroyed) {
		v.log.Error().Str("key", key).Msg("vault is closed")
		return "", false
	}
	if err != nil {
		v.purge(key, reasonUndecryptable, &DecryptionError{Key: key, Err: err})
		return "", false
	}
	return plaintext, true
}

// purge removes key; the caller holds the key lock
func (v *Vault) purge(key, reason string, cause error) {
	if cause != nil {
		v.log.Warn().Err(cause).Str("key", key).Msg("removing unreadable item")
	} else {
		v.log.Debug().Str("key", key).Str("reason", reason).Msg("removing item")
	}
	if err := v.store.RemoveItem(key); err != nil {
		v.log.Error().Err(err).Str("key", key).Msg("failed to remove item")
		return
	}
	v.metrics.purged.WithLabelValues(reason).Inc()
}

// RemoveItem deletes key. Failures are logged, never returned.
func (v *Vault) RemoveItem(key string) {
	unlock := v.keys.lock(key)
	defer unlock()

	if err := v.store.RemoveItem(key); err != nil {
		v.log.Error().Err(err).Str("key", key).Msg("failed to remove item")
	}
}

// Clear deletes every item. Failures are logged, never returned.
func (v *Vault) Clear() {
	if err := v.store.Clear(); err != nil {
		v.log.Error().Err(err).Msg("failed to clear vault")
	}
}

// Keys returns the stored keys, optionally restricted to a prefix
func (v *Vault) Keys(prefix string) []string {
	all, err := v.store.Keys()
	if err != nil {
		v.log.Error().Err(err).Msg("failed to enumerate keys")
		return nil
	}
	if prefix == "" {
		return all
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// ItemInfo describes a stored envelope without decrypting it
type ItemInfo struct {
	Key       string
	Encrypted bool
	StoredAt  time.Time
	Deadline  time.Time
	Expired   bool
	Corrupt   bool
}

// Describe reports on every stored envelope. Nothing is removed.
func (v *Vault) Describe() []ItemInfo {
	now := v.clock.Now()
	var infos []ItemInfo
	for _, key := range v.Keys("") {
		raw, found, err := v.store.GetItem(key)
		if err != nil || !found {
			continue
		}
		info := ItemInfo{Key: key}
		item, err := parseItem(raw)
		if err != nil {
			info.Corrupt = true
			infos = append(infos, info)
			continue
		}
		info.Encrypted = item.Encrypted
		info.StoredAt = time.UnixMilli(item.Timestamp)
		info.Deadline = item.Deadline(v.sessionTimeout)
		info.Expired = item.Expired(now, v.sessionTimeout)
		infos = append(infos, info)
	}
	return infos
}
