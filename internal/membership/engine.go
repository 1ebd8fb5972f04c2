// Package membership runs the player/team affiliation workflow: join
// requests, invitations, approval, rejection and removal.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DhavalSuthar-24/clubhub/internal/push"
	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
)

// TeamStore is the slice of the team store the engine writes to.
type TeamStore interface {
	GetTeam(ctx context.Context, id string) (*team.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	AddPlayer(ctx context.Context, teamID, playerID string) error
	RemovePlayer(ctx context.Context, teamID, playerID string) error
	CreateRequest(ctx context.Context, req *team.Request) error
	GetRequest(ctx context.Context, id string) (*team.Request, error)
	FindPendingRequest(ctx context.Context, playerID, teamID string) (*team.Request, error)
	ListRequests(ctx context.Context, q team.RequestQuery) ([]team.Request, error)
	SetRequestStatus(ctx context.Context, id string, status team.RequestStatus) error
}

// ProfileStore is the slice of the profile store the engine writes to.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*user.Profile, error)
	UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) error
}

// Notifier delivers fire-and-forget notifications.
type Notifier interface {
	Notify(msg push.Message) bool
}

type nopNotifier struct{}

func (nopNotifier) Notify(push.Message) bool { return false }

// Engine applies membership operations as idempotent multi-step procedures
// over documents that share no transaction. Preconditions are checked before
// any write; a failed write is returned to the caller, who may re-run the
// operation.
type Engine struct {
	teams    TeamStore
	profiles ProfileStore
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(teams TeamStore, profiles ProfileStore, opts ...Option) *Engine {
	e := &Engine{
		teams:    teams,
		profiles: profiles,
		notifier: nopNotifier{},
		log:      slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateJoinRequest records a player's request to join an approved team.
func (e *Engine) CreateJoinRequest(ctx context.Context, playerID, teamID string) (*team.Request, error) {
	if err := e.ensureNoPending(ctx, playerID, teamID); err != nil {
		return nil, err
	}
	t, err := e.loadTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if t.HasPlayer(playerID) {
		return nil, ErrAlreadyMember
	}
	if t.Status != team.StatusApproved {
		return nil, ErrTeamNotApproved
	}
	if t.IsFull() {
		return nil, ErrTeamFull
	}
	p, err := e.loadPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	req := e.newRequest(p, t, team.RequestJoin)
	if err := e.teams.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create join request: %w", err)
	}
	e.log.Info("join_request_created", "request_id", req.ID, "player_id", playerID, "team_id", teamID)

	e.notifier.Notify(push.Message{
		UserID: t.ManagerID,
		Title:  "New join request",
		Body:   fmt.Sprintf("%s wants to join %s", req.PlayerName, t.Name),
		Data:   map[string]string{"request_id": req.ID, "team_id": t.ID},
	})
	return req, nil
}

// CreateInvitation records a manager's invitation of a player to a team.
func (e *Engine) CreateInvitation(ctx context.Context, managerID, teamID, playerID string) (*team.Request, error) {
	if err := e.ensureNoPending(ctx, playerID, teamID); err != nil {
		return nil, err
	}
	t, err := e.loadTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if t.HasPlayer(playerID) {
		return nil, ErrAlreadyMember
	}
	p, err := e.loadPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	req := e.newRequest(p, t, team.RequestInvitation)
	req.ManagerID = managerID
	if err := e.teams.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	e.log.Info("invitation_created", "request_id", req.ID, "player_id", playerID, "team_id", teamID, "manager_id", managerID)

	e.notifier.Notify(push.Message{
		UserID: playerID,
		Title:  "Team invitation",
		Body:   fmt.Sprintf("You have been invited to join %s", t.Name),
		Data:   map[string]string{"request_id": req.ID, "team_id": t.ID},
	})
	return req, nil
}

// ApproveRequest puts the player on the team and marks the request approved.
// The roster write runs first and the profile follows it; the request is only
// marked approved once both succeed, so a failure leaves it pending and the call can
// be repeated. Approving an approved request is a no-op.
func (e *Engine) ApproveRequest(ctx context.Context, requestID string) (*team.Request, error) {
	req, err := e.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case team.RequestApproved:
		return req, nil
	case team.RequestRejected:
		return nil, ErrRequestRejected
	}

	t, err := e.loadTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	if !t.HasRoomFor(req.PlayerID) {
		return nil, ErrTeamFull
	}
	p, err := e.loadPlayer(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}
	if p.HasTeam() && !p.InTeam(t.ID) {
		return nil, ErrPlayerOnAnotherTeam
	}

	// The roster write holds the capacity guard, so the profile only follows
	// once the player is actually on the roster.
	if err := e.teams.AddPlayer(ctx, t.ID, req.PlayerID); err != nil {
		e.log.Warn("approve_incomplete", "request_id", req.ID, "error", err)
		if errors.Is(err, team.ErrTeamFull) {
			return nil, ErrTeamFull
		}
		return nil, fmt.Errorf("add player to roster: %w", err)
	}
	active := user.StatusActive
	err = e.profiles.UpdateProfile(ctx, req.PlayerID, user.ProfileUpdate{
		SetTeam: &user.TeamRef{ID: t.ID, Name: t.Name},
		Status:  &active,
	})
	if err != nil {
		e.log.Warn("approve_incomplete", "request_id", req.ID, "error", err)
		return nil, fmt.Errorf("update player profile: %w", err)
	}

	if err := e.teams.SetRequestStatus(ctx, req.ID, team.RequestApproved); err != nil {
		e.log.Warn("approve_incomplete", "request_id", req.ID, "error", err)
		return nil, fmt.Errorf("mark request approved: %w", err)
	}
	req.Status = team.RequestApproved
	req.UpdatedAt = e.now()
	e.log.Info("request_approved", "request_id", req.ID, "player_id", req.PlayerID, "team_id", t.ID)

	e.notifier.Notify(push.Message{
		UserID: req.PlayerID,
		Title:  "Request approved",
		Body:   fmt.Sprintf("You are now a member of %s", t.Name),
		Data:   map[string]string{"request_id": req.ID, "team_id": t.ID},
	})
	return req, nil
}

// RejectRequest marks a pending request rejected. No other document is touched.
func (e *Engine) RejectRequest(ctx context.Context, requestID string) (*team.Request, error) {
	req, err := e.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case team.RequestRejected:
		return req, nil
	case team.RequestApproved:
		return nil, ErrRequestApproved
	}

	if err := e.teams.SetRequestStatus(ctx, req.ID, team.RequestRejected); err != nil {
		return nil, fmt.Errorf("mark request rejected: %w", err)
	}
	req.Status = team.RequestRejected
	req.UpdatedAt = e.now()
	e.log.Info("request_rejected", "request_id", req.ID, "player_id", req.PlayerID, "team_id", req.TeamID)
	return req, nil
}

// RemovePlayer takes the player off the roster, then detaches the profile if
// it still points at this team. Both steps are safe to repeat.
func (e *Engine) RemovePlayer(ctx context.Context, teamID, playerID string) error {
	if _, err := e.loadTeam(ctx, teamID); err != nil {
		return err
	}
	if err := e.teams.RemovePlayer(ctx, teamID, playerID); err != nil {
		return fmt.Errorf("remove player from roster: %w", err)
	}

	p, err := e.profiles.GetProfile(ctx, playerID)
	if err != nil {
		return fmt.Errorf("load player profile: %w", err)
	}
	if p != nil && p.InTeam(teamID) {
		inactive := user.StatusInactive
		if err := e.profiles.UpdateProfile(ctx, playerID, user.ProfileUpdate{ClearTeam: true, Status: &inactive}); err != nil {
			return fmt.Errorf("update player profile: %w", err)
		}
	}
	e.log.Info("player_removed", "player_id", playerID, "team_id", teamID)
	return nil
}

// DeleteTeam closes the team's pending requests, takes every player off the
// roster through RemovePlayer and then deletes the team. A failure leaves the
// team in place and the call can be repeated.
func (e *Engine) DeleteTeam(ctx context.Context, teamID string) error {
	t, err := e.loadTeam(ctx, teamID)
	if err != nil {
		return err
	}

	pending, err := e.PendingRequestsForTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("list pending requests: %w", err)
	}
	for _, req := range pending {
		if err := e.teams.SetRequestStatus(ctx, req.ID, team.RequestRejected); err != nil {
			return fmt.Errorf("close request %s: %w", req.ID, err)
		}
	}
	for _, playerID := range t.Players.Clone() {
		if err := e.RemovePlayer(ctx, teamID, playerID); err != nil {
			return err
		}
	}

	if err := e.teams.DeleteTeam(ctx, teamID); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if t.ManagerID != "" {
		err := e.profiles.UpdateProfile(ctx, t.ManagerID, user.ProfileUpdate{RemoveManagedTeam: teamID})
		if err != nil {
			e.log.Warn("managed_team_cleanup_failed", "team_id", teamID, "manager_id", t.ManagerID, "error", err)
		}
	}
	e.log.Info("team_deleted", "team_id", teamID, "players_released", len(t.Players), "requests_closed", len(pending))
	return nil
}

// PendingRequestsForTeam lists a team's pending requests, newest first.
func (e *Engine) PendingRequestsForTeam(ctx context.Context, teamID string) ([]team.Request, error) {
	return e.teams.ListRequests(ctx, team.RequestQuery{TeamID: teamID, Status: team.RequestPending})
}

// RequestsForPlayer lists every request involving a player, newest first.
func (e *Engine) RequestsForPlayer(ctx context.Context, playerID string) ([]team.Request, error) {
	return e.teams.ListRequests(ctx, team.RequestQuery{PlayerID: playerID})
}

// HasPendingRequest reports whether the pair already has a pending request.
func (e *Engine) HasPendingRequest(ctx context.Context, playerID, teamID string) (bool, error) {
	req, err := e.teams.FindPendingRequest(ctx, playerID, teamID)
	if err != nil {
		return false, err
	}
	return req != nil, nil
}

// ensureNoPending is a read-before-write check; two concurrent callers can
// both pass it.
func (e *Engine) ensureNoPending(ctx context.Context, playerID, teamID string) error {
	pending, err := e.HasPendingRequest(ctx, playerID, teamID)
	if err != nil {
		return fmt.Errorf("check pending requests: %w", err)
	}
	if pending {
		return ErrDuplicatePending
	}
	return nil
}

func (e *Engine) loadTeam(ctx context.Context, id string) (*team.Team, error) {
	t, err := e.teams.GetTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}
	if t == nil {
		return nil, ErrTeamNotFound
	}
	return t, nil
}

func (e *Engine) loadPlayer(ctx context.Context, id string) (*user.Profile, error) {
	p, err := e.profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load player profile: %w", err)
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

func (e *Engine) loadRequest(ctx context.Context, id string) (*team.Request, error) {
	req, err := e.teams.GetRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

func (e *Engine) newRequest(p *user.Profile, t *team.Team, typ team.RequestType) *team.Request {
	now := e.now()
	return &team.Request{
		ID:          e.newID(),
		PlayerID:    p.ID,
		PlayerName:  p.FullName(),
		PlayerEmail: p.Email,
		TeamID:      t.ID,
		TeamName:    t.Name,
		ManagerID:   t.ManagerID,
		Type:        typ,
		Status:      team.RequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
