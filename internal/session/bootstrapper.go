package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/DhavalSuthar-24/clubhub/internal/auth"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
)

type State string

const (
	StateInitializing State = "initializing"
	StateResolving    State = "resolving"
	StateReady        State = "ready"
)

// Snapshot is the (identity, role, ui state) triple the presentation layer renders.
type Snapshot struct {
	ClientID string         `json:"client_id"`
	State    State          `json:"state"`
	Identity *auth.Identity `json:"identity"`
	Role     user.Role      `json:"role"`
	Tree     Tree           `json:"tree"`
	Loading  bool           `json:"loading"`
	Error    string         `json:"error,omitempty"`
	Version  uint64         `json:"version"`
}

// Resolver resolves an identity to a role.
type Resolver interface {
	ResolveRole(ctx context.Context, identityID string) (user.Role, error)
}

// Source produces identity-change events for one client instance.
type Source interface {
	Subscribe(ctx context.Context, clientID string) (<-chan auth.Event, error)
}

type resolution struct {
	gen      uint64
	identity auth.Identity
	role     user.Role
	err      error
}

// Bootstrapper turns identity-change events into session snapshots. Each
// event starts a new generation; a role resolution that finishes after a
// newer event arrived is discarded.
type Bootstrapper struct {
	clientID string
	resolver Resolver
	log      *slog.Logger

	mu       sync.RWMutex
	snap     Snapshot
	watchers map[chan Snapshot]struct{}

	// onIdle runs outside mu whenever the client is signed out and unwatched.
	onIdle func()

	// gen is only touched by the run loop.
	gen     uint64
	results chan resolution

	cancel context.CancelFunc
	done   chan struct{}
}

func NewBootstrapper(clientID string, resolver Resolver, log *slog.Logger) *Bootstrapper {
	if log == nil {
		log = slog.Default()
	}
	return &Bootstrapper{
		clientID: clientID,
		resolver: resolver,
		log:      log.With("client_id", clientID),
		snap: Snapshot{
			ClientID: clientID,
			State:    StateInitializing,
			Tree:     TreeGuest,
			Loading:  true,
		},
		watchers: make(map[chan Snapshot]struct{}),
		results:  make(chan resolution),
		done:     make(chan struct{}),
	}
}

// Start subscribes to src and runs the state machine until Close.
func (b *Bootstrapper) Start(src Source) error {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := src.Subscribe(ctx, b.clientID)
	if err != nil {
		cancel()
		return err
	}
	b.cancel = cancel
	go b.run(ctx, events)
	return nil
}

// Close detaches from the identity source and closes all watchers.
func (b *Bootstrapper) Close() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
}

// Snapshot returns the current state.
func (b *Bootstrapper) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

// Watch streams snapshots starting with the current one. Slow readers only
// see the latest snapshot. The channel closes when ctx is done or the
// bootstrapper is closed.
func (b *Bootstrapper) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	b.mu.Lock()
	select {
	case <-b.done:
		ch <- b.snap
		close(ch)
		b.mu.Unlock()
		return ch
	default:
	}
	ch <- b.snap
	b.watchers[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		b.mu.Lock()
		if _, ok := b.watchers[ch]; ok {
			delete(b.watchers, ch)
			close(ch)
		}
		idle := b.idleLocked()
		b.mu.Unlock()
		if idle {
			b.notifyIdle()
		}
	}()
	return ch
}

// idle reports whether the client is signed out with nobody watching.
func (b *Bootstrapper) idle() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.idleLocked()
}

func (b *Bootstrapper) idleLocked() bool {
	return b.snap.State == StateReady && b.snap.Identity == nil && len(b.watchers) == 0
}

func (b *Bootstrapper) notifyIdle() {
	if b.onIdle != nil {
		b.onIdle()
	}
}

func (b *Bootstrapper) run(ctx context.Context, events <-chan auth.Event) {
	defer func() {
		b.mu.Lock()
		for ch := range b.watchers {
			delete(b.watchers, ch)
			close(ch)
		}
		close(b.done)
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			b.handle(ctx, ev)
		case res := <-b.results:
			b.apply(res)
		}
	}
}

func (b *Bootstrapper) handle(ctx context.Context, ev auth.Event) {
	b.gen++
	if ev.Identity == nil {
		b.set(Snapshot{State: StateReady, Role: user.RoleGuest})
		return
	}

	identity := *ev.Identity
	b.set(Snapshot{State: StateResolving, Identity: &identity})

	// The read is not aborted when superseded; its result is dropped in apply.
	go func(gen uint64) {
		role, err := b.resolver.ResolveRole(ctx, identity.ID)
		select {
		case b.results <- resolution{gen: gen, identity: identity, role: role, err: err}:
		case <-ctx.Done():
		}
	}(b.gen)
}

func (b *Bootstrapper) apply(res resolution) {
	if res.gen != b.gen {
		b.log.Debug("stale_role_discarded", "identity_id", res.identity.ID, "generation", res.gen)
		return
	}

	identity := res.identity
	switch {
	case res.err == nil:
		b.set(Snapshot{State: StateReady, Identity: &identity, Role: res.role})
	case errors.Is(res.err, ErrProfileNotFound):
		// The profile may not be written yet right after registration.
		b.log.Info("profile_missing_default_role", "identity_id", identity.ID)
		b.set(Snapshot{State: StateReady, Identity: &identity, Role: user.RolePlayer})
	default:
		b.log.Error("role_resolution_failed", "identity_id", identity.ID, "error", res.err)
		b.set(Snapshot{State: StateReady, Identity: &identity, Error: res.err.Error()})
	}
}

func (b *Bootstrapper) set(s Snapshot) {
	s.ClientID = b.clientID
	s.Tree = SelectNavigationTree(s.Identity, s.Role)
	s.Loading = s.State == StateInitializing || s.State == StateResolving

	b.mu.Lock()
	s.Version = b.snap.Version + 1
	b.snap = s
	for ch := range b.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
	idle := b.idleLocked()
	b.mu.Unlock()

	b.log.Debug("session_state", "state", s.State, "role", s.Role, "tree", s.Tree)
	if idle {
		b.notifyIdle()
	}
}
