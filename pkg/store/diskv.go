package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"
)

// Storage keys. They match the browser localStorage keys so a session file
// written by one client is readable by the other.
const (
	keyToken = "token"
	keyUser  = "zplusUser"

	// KeySnakeHighScore holds the best snake score for this machine.
	KeySnakeHighScore = "snakeHighScore"

	tempDirName = ".tmp"
)

// Persistence defines the persistence contract for the login session and the
// handful of small values that live next to it.
type Persistence interface {
	// Load returns the stored session. It fails closed: a missing half, an
	// undecodable user, an unknown role or an expired JWT all clear storage
	// and report absent.
	Load() (Session, bool)
	// Save persists the token and user.
	Save(s Session) error
	// Clear removes the session. Clearing an empty store is not an error.
	Clear() error
	// Token returns the raw stored token, or "" when there is none.
	Token() string

	Get(key string) (string, bool)
	Set(key, value string) error

	Watch(ctx context.Context) (<-chan Event, error)
}

// Config locates the session directory.
type Config interface {
	BasePath() string
}

// Option customizes a Persistence.
type Option func(*persistence)

// WithLogger routes store diagnostics to log.
func WithLogger(log zerolog.Logger) Option {
	return func(p *persistence) { p.log = log }
}

// WithClock replaces time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *persistence) { p.now = now }
}

// New creates a Persistence backed by diskv rooted at cfg.BasePath().
func New(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	basePath := strings.TrimSpace(cfg.BasePath())
	if basePath == "" {
		return nil, errors.New("store: base path required")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath:  basePath,
			Transform: flatTransform,
			// Another zdash process may log in or out underneath us, so
			// every read goes to disk.
			CacheSizeMax: 0,
			TempDir:      filepath.Join(basePath, tempDirName),
			PathPerm:     0o700,
			FilePerm:     0o600,
		}),
		basePath: basePath,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type persistence struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
	log      zerolog.Logger
	now      func() time.Time
}

func (p *persistence) Load() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	token := strings.TrimSpace(p.d.ReadString(keyToken))
	raw, err := p.d.Read(keyUser)
	if token == "" || err != nil {
		if token != "" || err == nil {
			p.log.Debug().Msg("store: incomplete session, clearing")
		}
		p.clearLocked()
		return Session{}, false
	}

	user, err := decodeUser(raw)
	if err != nil {
		p.log.Warn().Err(err).Msg("store: undecodable user, clearing session")
		p.clearLocked()
		return Session{}, false
	}

	if tokenExpired(token, p.now()) {
		p.log.Info().Str("selfId", user.SelfID).Msg("store: token expired, clearing session")
		p.clearLocked()
		return Session{}, false
	}

	return Session{Token: token, User: user}, true
}

func (p *persistence) Save(s Session) error {
	token := strings.TrimSpace(s.Token)
	if token == "" {
		return errNoToken
	}
	role, ok := ParseRole(string(s.User.UserType))
	if !ok {
		return fmt.Errorf("store: unknown user type %q", s.User.UserType)
	}
	s.User.UserType = role

	data, err := encodeUser(s.User)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// The user goes first: a reader that sees the token also sees its user.
	if err := p.d.Write(keyUser, data); err != nil {
		return fmt.Errorf("store: write user: %w", err)
	}
	if err := p.d.WriteString(keyToken, token); err != nil {
		return fmt.Errorf("store: write token: %w", err)
	}
	return nil
}

func (p *persistence) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clearLocked()
}

func (p *persistence) clearLocked() error {
	var errs []error
	for _, key := range []string{keyToken, keyUser} {
		if err := p.erase(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *persistence) erase(key string) error {
	if !p.d.Has(key) {
		return nil
	}
	if err := p.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

func (p *persistence) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.TrimSpace(p.d.ReadString(keyToken))
}

func (p *persistence) Get(key string) (string, bool) {
	if err := checkKey(key); err != nil {
		return "", false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	val, err := p.d.Read(key)
	if err != nil {
		return "", false
	}
	return string(val), true
}

func (p *persistence) Set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.d.WriteString(key, value)
}

func checkKey(key string) error {
	switch {
	case key == "", key == tempDirName:
		return fmt.Errorf("store: invalid key %q", key)
	case key == keyToken, key == keyUser:
		return fmt.Errorf("store: %q is managed by the session", key)
	case strings.ContainsAny(key, `/\`):
		return fmt.Errorf("store: invalid key %q", key)
	}
	return nil
}

// flatTransform keeps every key as a file directly under the base path.
func flatTransform(string) []string {
	return []string{}
}
