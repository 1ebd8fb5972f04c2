package team

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/clubhub/internal/apperr"
)

// ErrTeamFull is returned by AddPlayer when the roster is at capacity.
var ErrTeamFull = apperr.Precondition("team has reached its maximum player capacity")

// ErrTeamNotFound is returned by roster writes against a missing team.
var ErrTeamNotFound = apperr.NotFound("team")

// ErrRequestNotFound is returned by status writes against a missing request.
var ErrRequestNotFound = apperr.NotFound("team request")

// Repository defines the team and team-request document operations.
type Repository interface {
	// Team operations
	CreateTeam(ctx context.Context, team *Team) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context, q TeamQuery) ([]Team, error)
	UpdateTeamStatus(ctx context.Context, id string, status Status) error
	CountTeams(ctx context.Context, status Status) (int64, error)
	// DeleteTeam removes the team document. Deleting a missing team succeeds.
	DeleteTeam(ctx context.Context, id string) error

	// Roster operations. Both are set operations: adding a present player or
	// removing an absent one succeeds without changing anything.
	AddPlayer(ctx context.Context, teamID, playerID string) error
	RemovePlayer(ctx context.Context, teamID, playerID string) error

	// Request operations
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	FindPendingRequest(ctx context.Context, playerID, teamID string) (*Request, error)
	ListRequests(ctx context.Context, q RequestQuery) ([]Request, error)
	SetRequestStatus(ctx context.Context, id string, status RequestStatus) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new instance of Repository
func NewTeamRepository(db *gorm.DB) Repository {
	return &teamRepository{db: db}
}

// --- Team Operations ---

func (r *teamRepository) CreateTeam(ctx context.Context, team *Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepository) GetTeam(ctx context.Context, id string) (*Team, error) {
	var team Team
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListTeams(ctx context.Context, q TeamQuery) ([]Team, error) {
	var teams []Team

	query := r.db.WithContext(ctx).Model(&Team{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.ManagerID != "" {
		query = query.Where("manager_id = ?", q.ManagerID)
	}
	if q.NameFrom != "" {
		query = query.Where("name >= ?", q.NameFrom)
	}
	if q.NameTo != "" {
		query = query.Where("name < ?", q.NameTo)
	}
	if q.After != nil {
		query = query.Where("(name, id) > (?, ?)", q.After.Key, q.After.ID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	if err := query.Order("name asc").Order("id asc").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) UpdateTeamStatus(ctx context.Context, id string, status Status) error {
	res := r.db.WithContext(ctx).Model(&Team{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (r *teamRepository) CountTeams(ctx context.Context, status Status) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&Team{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *teamRepository) DeleteTeam(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Team{}).Error
}

// --- Roster Operations ---

func (r *teamRepository) AddPlayer(ctx context.Context, teamID, playerID string) error {
	return r.WithTransaction(ctx, func(tx *gorm.DB) error {
		team, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if !team.HasRoomFor(playerID) {
			return ErrTeamFull
		}
		players, added := team.Players.Add(playerID)
		if !added {
			return nil
		}
		return tx.Model(&Team{}).Where("id = ?", teamID).Updates(map[string]interface{}{
			"players":    players,
			"updated_at": time.Now(),
		}).Error
	})
}

func (r *teamRepository) RemovePlayer(ctx context.Context, teamID, playerID string) error {
	return r.WithTransaction(ctx, func(tx *gorm.DB) error {
		team, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		players, removed := team.Players.Remove(playerID)
		if !removed {
			return nil
		}
		return tx.Model(&Team{}).Where("id = ?", teamID).Updates(map[string]interface{}{
			"players":    players,
			"updated_at": time.Now(),
		}).Error
	})
}

// lockTeam reads a team row with FOR UPDATE so the roster read-modify-write
// is atomic for this document.
func lockTeam(tx *gorm.DB, teamID string) (*Team, error) {
	var team Team
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", teamID).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

// --- Request Operations ---

func (r *teamRepository) CreateRequest(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *teamRepository) GetRequest(ctx context.Context, id string) (*Request, error) {
	var req Request
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *teamRepository) FindPendingRequest(ctx context.Context, playerID, teamID string) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND team_id = ? AND status = ?", playerID, teamID, RequestPending).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *teamRepository) ListRequests(ctx context.Context, q RequestQuery) ([]Request, error) {
	var requests []Request
	query := r.db.WithContext(ctx).Model(&Request{})
	if q.PlayerID != "" {
		query = query.Where("player_id = ?", q.PlayerID)
	}
	if q.TeamID != "" {
		query = query.Where("team_id = ?", q.TeamID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Order("created_at desc").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *teamRepository) SetRequestStatus(ctx context.Context, id string, status RequestStatus) error {
	res := r.db.WithContext(ctx).Model(&Request{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// WithTransaction runs txFunc inside a database transaction bound to ctx.
func (r *teamRepository) WithTransaction(ctx context.Context, txFunc func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(txFunc)
}
