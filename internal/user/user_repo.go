package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/clubhub/internal/apperr"
)

// ErrProfileNotFound is returned by UpdateProfile for a missing profile.
var ErrProfileNotFound = apperr.NotFound("user profile")

// Repository defines the profile document operations.
type Repository interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
	ListProfiles(ctx context.Context, q ProfileQuery) ([]Profile, error)
	CountProfiles(ctx context.Context, role Role) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a gorm-backed Repository.
func NewUserRepository(db *gorm.DB) Repository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateProfile(ctx context.Context, p *Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *userRepository) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	if upd.AddManagedTeam != "" || upd.RemoveManagedTeam != "" {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var p Profile
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProfileNotFound
				}
				return err
			}
			fields := updateFields(upd)
			teams, changed := p.ManagedTeams, false
			if upd.AddManagedTeam != "" {
				var added bool
				teams, added = teams.Add(upd.AddManagedTeam)
				changed = changed || added
			}
			if upd.RemoveManagedTeam != "" {
				var removed bool
				teams, removed = teams.Remove(upd.RemoveManagedTeam)
				changed = changed || removed
			}
			if changed {
				fields["managed_teams"] = teams
			}
			if len(fields) == 0 {
				return nil
			}
			return tx.Model(&Profile{}).Where("id = ?", id).Updates(fields).Error
		})
	}

	fields := updateFields(upd)
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// updateFields turns a ProfileUpdate into the column map gorm writes in one statement.
func updateFields(upd ProfileUpdate) map[string]interface{} {
	fields := make(map[string]interface{})
	if upd.FirstName != nil {
		fields["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		fields["last_name"] = *upd.LastName
	}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.SetTeam != nil {
		fields["team_id"] = upd.SetTeam.ID
		fields["team_name"] = upd.SetTeam.Name
	} else if upd.ClearTeam {
		fields["team_id"] = nil
		fields["team_name"] = nil
	}
	if upd.PushToken != nil {
		fields["push_token"] = *upd.PushToken
	}
	return fields
}

func (r *userRepository) ListProfiles(ctx context.Context, q ProfileQuery) ([]Profile, error) {
	var profiles []Profile

	query := r.db.WithContext(ctx).Model(&Profile{})
	if q.Role != "" {
		query = query.Where("role = ?", q.Role)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.TeamID != "" {
		query = query.Where("team_id = ?", q.TeamID)
	}
	if len(q.IDs) > 0 {
		query = query.Where("id IN ?", q.IDs)
	}
	if q.After != nil {
		query = query.Where("(first_name, id) > (?, ?)", q.After.Key, q.After.ID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	if err := query.Order("first_name asc").Order("id asc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *userRepository) CountProfiles(ctx context.Context, role Role) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&Profile{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
