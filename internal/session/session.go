// Package session owns the authentication token and the session state machine.
package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
)

// CredentialStore persists the token across restarts.
type CredentialStore interface {
	// Save writes token, overwriting any previous value.
	Save(token string) error
	// Load returns the persisted token; ok is false when none is stored.
	Load() (tok model.Token, ok bool, err error)
	// Clear removes the persisted token; idempotent.
	Clear() error
}

// Reason tells subscribers what caused a transition.
type Reason string

const (
	ReasonLogin   Reason = "login"
	ReasonLogout  Reason = "logout"
	ReasonRestore Reason = "restore"
	ReasonExpired Reason = "expired"
)

// Change is emitted after every transition.
type Change struct {
	Generation uint64
	State      model.State
	Token      string // empty when State is Anonymous
	Reason     Reason
}

// Listener receives session changes. Listeners run synchronously on the
// transitioning goroutine and must not start another transition themselves.
type Listener func(Change)

// Controller is the two-state session machine (Anonymous, Authenticated).
// Every transition bumps the generation used to discard stale responses.
type Controller struct {
	tmu sync.Mutex // serializes transitions and their notifications

	mu    sync.RWMutex
	token string
	gen   uint64

	lmu       sync.Mutex
	listeners []subscription
	nextID    uint64

	store CredentialStore
	log   *zap.Logger
	now   func() time.Time
}

type subscription struct {
	id uint64
	fn Listener
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides time.Now, used for expiry checks on Restore.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New constructs an anonymous Controller backed by store.
func New(store CredentialStore, opts ...Option) *Controller {
	c := &Controller{store: store, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Subscribe registers fn for session changes and returns a function that removes it.
func (c *Controller) Subscribe(fn Listener) (cancel func()) {
	c.lmu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, subscription{id: id, fn: fn})
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		for i, s := range c.listeners {
			if s.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Login moves to Authenticated with token and persists it.
// If persisting fails the session stays authenticated for this process and
// the ErrStorageUnavailable error is returned.
func (c *Controller) Login(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", errs.ErrValidation)
	}
	c.tmu.Lock()
	defer c.tmu.Unlock()

	ch := c.set(token, ReasonLogin)
	err := c.store.Save(token)
	if err != nil {
		c.log.Warn("token not persisted", zap.Error(err))
	}
	c.log.Info("session started", zap.Uint64("generation", ch.Generation))
	c.notify(ch)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Logout moves to Anonymous and clears the persisted token. Subscribers have
// been notified (and the note collection cleared) by the time it returns.
// Calling Logout while anonymous is a no-op apart from the generation bump.
func (c *Controller) Logout() error {
	c.tmu.Lock()
	defer c.tmu.Unlock()

	ch := c.set("", ReasonLogout)
	err := c.store.Clear()
	if err != nil {
		c.log.Warn("token not cleared", zap.Error(err))
	}
	c.log.Info("session ended", zap.Uint64("generation", ch.Generation))
	c.notify(ch)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Restore loads a persisted token at process start. A present token moves the
// session to Authenticated without re-persisting it. A token whose expiry hint
// has already passed is treated as rejected: it is cleared and ErrUnauthorized
// is returned.
func (c *Controller) Restore() error {
	c.tmu.Lock()
	defer c.tmu.Unlock()

	tok, ok, err := c.store.Load()
	if err != nil {
		ch := c.set("", ReasonRestore)
		c.notify(ch)
		return fmt.Errorf("restore: %w", err)
	}
	if !ok {
		ch := c.set("", ReasonRestore)
		c.log.Debug("no stored session")
		c.notify(ch)
		return nil
	}
	if !tok.ExpiresAt.IsZero() && !c.now().Before(tok.ExpiresAt) {
		ch := c.set("", ReasonExpired)
		cerr := c.store.Clear()
		c.log.Info("stored session expired", zap.Time("expires_at", tok.ExpiresAt))
		c.notify(ch)
		if cerr != nil {
			return fmt.Errorf("restore: %w (clear: %v)", errs.ErrUnauthorized, cerr)
		}
		return fmt.Errorf("restore: %w: stored token expired", errs.ErrUnauthorized)
	}

	ch := c.set(tok.AccessToken, ReasonRestore)
	c.log.Info("session restored", zap.Uint64("generation", ch.Generation))
	c.notify(ch)
	return nil
}

// Expire forces a logout because the remote API rejected the token issued in
// generation gen. It does nothing and reports false when the session has moved
// on since then.
func (c *Controller) Expire(gen uint64) (bool, error) {
	c.tmu.Lock()
	defer c.tmu.Unlock()

	c.mu.RLock()
	current := c.gen == gen && c.token != ""
	c.mu.RUnlock()
	if !current {
		return false, nil
	}

	ch := c.set("", ReasonExpired)
	err := c.store.Clear()
	c.log.Warn("session rejected by server", zap.Uint64("generation", gen))
	c.notify(ch)
	if err != nil {
		return true, fmt.Errorf("expire: %w", err)
	}
	return true, nil
}

// Current returns the token and generation; ok is false when anonymous.
func (c *Controller) Current() (token string, gen uint64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.gen, c.token != ""
}

// Generation returns the current session generation.
func (c *Controller) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// State returns the derived authentication state.
func (c *Controller) State() model.State {
	if c.Authenticated() {
		return model.Authenticated
	}
	return model.Anonymous
}

// Authenticated reports whether a token is held.
func (c *Controller) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *Controller) set(token string, r Reason) Change {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.gen++
	st := model.Anonymous
	if token != "" {
		st = model.Authenticated
	}
	return Change{Generation: c.gen, State: st, Token: token, Reason: r}
}

func (c *Controller) notify(ch Change) {
	c.lmu.Lock()
	subs := make([]subscription, len(c.listeners))
	copy(subs, c.listeners)
	c.lmu.Unlock()
	for _, s := range subs {
		s.fn(ch)
	}
}
