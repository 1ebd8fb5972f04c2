package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DhavalSuthar-24/clubhub/internal/store"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/retry"
)

const (
	DefaultRoleRetryAttempts = 5
	DefaultRoleRetryDelay    = 3 * time.Second
)

var (
	// ErrProfileNotFound means the identity has no profile document yet.
	ErrProfileNotFound = errors.New("session: profile not found")
	// ErrRoleResolutionTimeout means every attempt hit a transient backend
	// error. It is distinct from a hard backend failure.
	ErrRoleResolutionTimeout = errors.New("session: role resolution timed out")
)

// ProfileReader is the slice of the profile store the resolver needs.
type ProfileReader interface {
	GetProfile(ctx context.Context, id string) (*user.Profile, error)
}

// DefaultRetryPolicy retries transient store errors 5 times, 3 seconds apart.
func DefaultRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: DefaultRoleRetryAttempts,
		Delay:       DefaultRoleRetryDelay,
		Retryable:   store.IsTransient,
	}
}

// RoleResolver maps an identity to its application role by reading the
// profile document.
type RoleResolver struct {
	profiles ProfileReader
	policy   retry.Policy
	log      *slog.Logger
}

func NewRoleResolver(profiles ProfileReader, policy retry.Policy, log *slog.Logger) *RoleResolver {
	if log == nil {
		log = slog.Default()
	}
	if policy.Retryable == nil {
		policy.Retryable = store.IsTransient
	}
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error) {
			log.Warn("role_read_retry", "attempt", attempt, "delay", policy.Delay, "error", err)
		}
	}
	return &RoleResolver{profiles: profiles, policy: policy, log: log}
}

// ResolveRole returns the role stored on the identity's profile.
func (r *RoleResolver) ResolveRole(ctx context.Context, identityID string) (user.Role, error) {
	var role user.Role
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		p, err := r.profiles.GetProfile(ctx, identityID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProfileNotFound
		}
		role = p.Role
		return nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return "", fmt.Errorf("%w: %w", ErrRoleResolutionTimeout, err)
		}
		return "", err
	}
	return role, nil
}
