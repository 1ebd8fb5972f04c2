package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrHubClosed = errors.New("session: hub closed")

// Hub owns one Bootstrapper per client instance. Bootstrappers are created on
// first use and evicted once their client is signed out and nobody watches
// it. A later request for the same client starts a fresh one.
type Hub struct {
	src      Source
	resolver Resolver
	log      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Bootstrapper
	closed   bool
}

func NewHub(src Source, resolver Resolver, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		src:      src,
		resolver: resolver,
		log:      log,
		sessions: make(map[string]*Bootstrapper),
	}
}

// Session returns the running bootstrapper for clientID, starting one if needed.
func (h *Hub) Session(clientID string) (*Bootstrapper, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessionLocked(clientID)
}

// Watch streams the snapshots of clientID. The watcher is registered before
// the hub lock is released, so the session cannot be evicted in between.
func (h *Hub) Watch(ctx context.Context, clientID string) (<-chan Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, err := h.sessionLocked(clientID)
	if err != nil {
		return nil, err
	}
	return b.Watch(ctx), nil
}

func (h *Hub) sessionLocked(clientID string) (*Bootstrapper, error) {
	if h.closed {
		return nil, ErrHubClosed
	}
	if b, ok := h.sessions[clientID]; ok {
		return b, nil
	}

	b := NewBootstrapper(clientID, h.resolver, h.log)
	b.onIdle = func() { h.release(clientID, b) }
	if err := b.Start(h.src); err != nil {
		return nil, err
	}
	h.sessions[clientID] = b
	h.log.Info("session_started", "client_id", clientID)
	return b, nil
}

func (h *Hub) release(clientID string, b *Bootstrapper) {
	h.mu.Lock()
	if h.closed || h.sessions[clientID] != b || !b.idle() {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, clientID)
	h.mu.Unlock()

	h.log.Info("session_evicted", "client_id", clientID)
	// Close waits for the run loop, which may be the caller.
	go b.Close()
}

// Len reports how many client sessions are running.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close stops every bootstrapper.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sessions := h.sessions
	h.sessions = nil
	h.mu.Unlock()

	for _, b := range sessions {
		b.Close()
	}
}
