package session

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/clubhub/internal/auth"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type chanSource struct {
	ch chan auth.Event
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan auth.Event, 8)}
}

func (s *chanSource) Subscribe(context.Context, string) (<-chan auth.Event, error) {
	return s.ch, nil
}

func (s *chanSource) signIn(id string) {
	s.ch <- auth.Event{Identity: &auth.Identity{ID: id, Email: id + "@club.test"}}
}

func (s *chanSource) signOut() {
	s.ch <- auth.Event{}
}

type outcome struct {
	role user.Role
	err  error
}

// gatedResolver blocks each ResolveRole call until the test releases it.
type gatedResolver struct {
	mu    sync.Mutex
	gates map[string]chan outcome
	calls map[string]int
}

func newGatedResolver() *gatedResolver {
	return &gatedResolver{gates: make(map[string]chan outcome), calls: make(map[string]int)}
}

func (r *gatedResolver) gate(id string) chan outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gates[id]
	if !ok {
		g = make(chan outcome, 1)
		r.gates[id] = g
	}
	return g
}

func (r *gatedResolver) ResolveRole(ctx context.Context, id string) (user.Role, error) {
	r.mu.Lock()
	r.calls[id]++
	r.mu.Unlock()
	select {
	case o := <-r.gate(id):
		return o.role, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *gatedResolver) called(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[id] > 0
}

func (r *gatedResolver) release(id string, role user.Role, err error) {
	r.gate(id) <- outcome{role: role, err: err}
}

func startBootstrapper(t *testing.T, src Source, r Resolver) *Bootstrapper {
	t.Helper()
	b := NewBootstrapper("client-1", r, nil)
	require.NoError(t, b.Start(src))
	t.Cleanup(b.Close)
	return b
}

func TestBootstrapperStartsInitializing(t *testing.T) {
	b := NewBootstrapper("client-1", newGatedResolver(), nil)
	snap := b.Snapshot()
	assert.Equal(t, StateInitializing, snap.State)
	assert.True(t, snap.Loading)
	assert.Equal(t, TreeGuest, snap.Tree)
	assert.Equal(t, "client-1", snap.ClientID)
}

func TestBootstrapperSignedOutIsReadyGuest(t *testing.T) {
	src := newChanSource()
	b := startBootstrapper(t, src, newGatedResolver())

	src.signOut()
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)

	snap := b.Snapshot()
	assert.Nil(t, snap.Identity)
	assert.Equal(t, user.RoleGuest, snap.Role)
	assert.Equal(t, TreeGuest, snap.Tree)
	assert.False(t, snap.Loading)
}

func TestBootstrapperResolvesRole(t *testing.T) {
	src := newChanSource()
	r := newGatedResolver()
	b := startBootstrapper(t, src, r)

	src.signIn("u1")
	require.Eventually(t, func() bool { return b.Snapshot().State == StateResolving }, waitFor, tick)
	snap := b.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, "u1", snap.Identity.ID)

	r.release("u1", user.RoleManager, nil)
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)

	snap = b.Snapshot()
	assert.Equal(t, user.RoleManager, snap.Role)
	assert.Equal(t, TreeManager, snap.Tree)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
}

func TestBootstrapperMissingProfileDefaultsToPlayer(t *testing.T) {
	src := newChanSource()
	r := newGatedResolver()
	b := startBootstrapper(t, src, r)

	src.signIn("fresh")
	r.release("fresh", "", ErrProfileNotFound)
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)

	snap := b.Snapshot()
	assert.Equal(t, user.RolePlayer, snap.Role)
	assert.Equal(t, TreePlayer, snap.Tree)
	assert.Empty(t, snap.Error)
}

func TestBootstrapperResolutionFailureLeavesRoleEmpty(t *testing.T) {
	src := newChanSource()
	r := newGatedResolver()
	b := startBootstrapper(t, src, r)

	src.signIn("u1")
	r.release("u1", "", ErrRoleResolutionTimeout)
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)

	snap := b.Snapshot()
	assert.Equal(t, user.Role(""), snap.Role)
	assert.Equal(t, TreeGuest, snap.Tree)
	assert.NotNil(t, snap.Identity)
	assert.Contains(t, snap.Error, "timed out")
	assert.False(t, snap.Loading)
}

// lockedBuffer collects log output written from the bootstrapper goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func TestBootstrapperLogsResolutionFailure(t *testing.T) {
	var out lockedBuffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelInfo}))

	src := newChanSource()
	r := newGatedResolver()
	b := NewBootstrapper("client-9", r, logger)
	require.NoError(t, b.Start(src))
	t.Cleanup(b.Close)

	src.signIn("u1")
	r.release("u1", "", ErrRoleResolutionTimeout)
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("role_resolution_failed"))
	}, waitFor, tick)
	logged := out.String()
	assert.Contains(t, logged, "client_id=client-9")
	assert.Contains(t, logged, "identity_id=u1")
}

func TestBootstrapperDiscardsStaleResolution(t *testing.T) {
	src := newChanSource()
	r := newGatedResolver()
	b := startBootstrapper(t, src, r)

	src.signIn("first")
	require.Eventually(t, func() bool { return r.called("first") }, waitFor, tick)
	src.signIn("second")
	require.Eventually(t, func() bool { return r.called("second") }, waitFor, tick)

	r.release("second", user.RoleManager, nil)
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)

	r.release("first", user.RoleAdmin, nil)
	assert.Never(t, func() bool { return b.Snapshot().Role != user.RoleManager }, 100*time.Millisecond, tick)

	snap := b.Snapshot()
	assert.Equal(t, "second", snap.Identity.ID)
	assert.Equal(t, TreeManager, snap.Tree)
}

func TestBootstrapperEarlierResolutionFinishingFirstIsIgnored(t *testing.T) {
	src := newChanSource()
	r := newGatedResolver()
	b := startBootstrapper(t, src, r)

	src.signIn("first")
	require.Eventually(t, func() bool { return r.called("first") }, waitFor, tick)
	src.signIn("second")
	require.Eventually(t, func() bool { return r.called("second") }, waitFor, tick)

	r.release("first", user.RoleAdmin, nil)
	assert.Never(t, func() bool { return b.Snapshot().State != StateResolving }, 100*time.Millisecond, tick)
	snap := b.Snapshot()
	assert.Equal(t, "second", snap.Identity.ID)
	assert.Empty(t, snap.Role)
	assert.True(t, snap.Loading)

	r.release("second", user.RoleManager, nil)
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)
	snap = b.Snapshot()
	assert.Equal(t, "second", snap.Identity.ID)
	assert.Equal(t, user.RoleManager, snap.Role)
	assert.Equal(t, TreeManager, snap.Tree)
}

func TestBootstrapperSignOutSupersedesPendingResolution(t *testing.T) {
	src := newChanSource()
	r := newGatedResolver()
	b := startBootstrapper(t, src, r)

	src.signIn("u1")
	require.Eventually(t, func() bool { return r.called("u1") }, waitFor, tick)
	src.signOut()
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)

	r.release("u1", user.RoleAdmin, nil)
	assert.Never(t, func() bool { return b.Snapshot().Identity != nil }, 100*time.Millisecond, tick)
	assert.Equal(t, TreeGuest, b.Snapshot().Tree)
}

func TestBootstrapperWatch(t *testing.T) {
	src := newChanSource()
	r := newGatedResolver()
	b := startBootstrapper(t, src, r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := b.Watch(ctx)

	first := <-updates
	assert.Equal(t, StateInitializing, first.State)

	src.signIn("u1")
	r.release("u1", user.RoleAdmin, nil)

	var last Snapshot
	require.Eventually(t, func() bool {
		select {
		case s := <-updates:
			last = s
		default:
		}
		return last.State == StateReady
	}, waitFor, tick)
	assert.Equal(t, TreeAdmin, last.Tree)
	assert.Greater(t, last.Version, first.Version)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, waitFor, tick)
}

func TestBootstrapperCloseEndsWatchers(t *testing.T) {
	src := newChanSource()
	b := NewBootstrapper("client-1", newGatedResolver(), nil)
	require.NoError(t, b.Start(src))

	updates := b.Watch(context.Background())
	<-updates
	b.Close()

	_, ok := <-updates
	assert.False(t, ok)

	// Watching a closed bootstrapper yields the final snapshot and ends.
	late := b.Watch(context.Background())
	_, ok = <-late
	assert.True(t, ok)
	_, ok = <-late
	assert.False(t, ok)
}

func TestBootstrapperReportsIdle(t *testing.T) {
	src := newChanSource()
	r := newGatedResolver()
	b := NewBootstrapper("client-1", r, nil)
	idle := make(chan struct{}, 8)
	b.onIdle = func() { idle <- struct{}{} }
	require.NoError(t, b.Start(src))
	t.Cleanup(b.Close)

	ctx, cancel := context.WithCancel(context.Background())
	updates := b.Watch(ctx)
	<-updates

	src.signOut()
	require.Eventually(t, func() bool { return b.Snapshot().State == StateReady }, waitFor, tick)
	assert.Empty(t, idle, "a watched client is not idle")

	cancel()
	select {
	case <-idle:
	case <-time.After(waitFor):
		t.Fatal("idle not reported after the last watcher left")
	}

	src.signIn("u1")
	require.Eventually(t, func() bool { return r.called("u1") }, waitFor, tick)
	r.release("u1", user.RolePlayer, nil)
	require.Eventually(t, func() bool { return b.Snapshot().Role == user.RolePlayer }, waitFor, tick)
	assert.Empty(t, idle, "a signed-in client is not idle")
}
