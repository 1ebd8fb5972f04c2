// Package push delivers best-effort notifications to users' devices.
package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/DhavalSuthar-24/clubhub/internal/user"
)

const (
	DefaultQueueSize = 256
	sendTimeout      = 10 * time.Second
)

// ErrNoToken is returned by Deliver when the user has not registered a device.
var ErrNoToken = errors.New("push: user has no push token")

// Message is a notification addressed to a user.
type Message struct {
	UserID string            `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// Sender hands a message to the push service for one device token.
type Sender interface {
	Send(ctx context.Context, token string, msg Message) error
}

// LogSender only logs messages. It is used when no push service is configured.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(_ context.Context, token string, msg Message) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("push_sent", "user_id", msg.UserID, "title", msg.Title, "token_len", len(token))
	return nil
}

// TokenReader loads the profile holding a user's push token.
type TokenReader interface {
	GetProfile(ctx context.Context, id string) (*user.Profile, error)
}

// Dispatcher queues messages and delivers them from a single worker.
// Notify never blocks: when the queue is full the message is dropped.
type Dispatcher struct {
	tokens TokenReader
	sender Sender
	log    *slog.Logger
	queue  chan Message

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewDispatcher(tokens TokenReader, sender Sender, queueSize int, log *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		tokens: tokens,
		sender: sender,
		log:    log,
		queue:  make(chan Message, queueSize),
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for msg := range d.queue {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			if err := d.Deliver(ctx, msg); err != nil && !errors.Is(err, ErrNoToken) {
				d.log.Warn("push_failed", "user_id", msg.UserID, "error", err)
			}
			cancel()
		}
	}()
}

// Notify enqueues msg and reports whether it was accepted.
func (d *Dispatcher) Notify(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.log.Warn("push_dropped", "user_id", msg.UserID, "reason", "queue_full")
		return false
	}
}

// Deliver sends msg synchronously.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	p, err := d.tokens.GetProfile(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if p == nil || p.PushToken == "" {
		return ErrNoToken
	}
	return d.sender.Send(ctx, p.PushToken, msg)
}

// Stop stops accepting messages and waits for the queue to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}
