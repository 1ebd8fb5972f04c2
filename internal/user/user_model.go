package user

import (
	"strings"
	"time"

	"github.com/DhavalSuthar-24/clubhub/internal/models"
	"github.com/DhavalSuthar-24/clubhub/internal/store"
)

// Role decides which navigation tree and actions a signed-in user gets.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RolePlayer  Role = "player"
	RoleGuest   Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RolePlayer, RoleGuest:
		return true
	}
	return false
}

// ParseRole normalises s; unknown values come back as-is so callers can decide.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

type Status string

const (
	StatusActive              Status = "active"
	StatusInactive            Status = "inactive"
	StatusPendingTeamApproval Status = "pending_team_approval"
)

// Profile is the user document keyed by the identity id.
type Profile struct {
	ID           string           `json:"id" gorm:"primaryKey;size:36"`
	Email        string           `json:"email" gorm:"uniqueIndex;not null"`
	FirstName    string           `json:"first_name" gorm:"index"`
	LastName     string           `json:"last_name"`
	Role         Role             `json:"role" gorm:"index;not null"`
	Status       Status           `json:"status" gorm:"index"`
	TeamID       *string          `json:"team_id" gorm:"index;size:36"`
	TeamName     *string          `json:"team_name"`
	ManagedTeams models.StringSet `json:"managed_teams" gorm:"type:json"`
	PushToken    string           `json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (Profile) TableName() string {
	return "users"
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// InTeam reports whether the profile currently points at teamID.
func (p *Profile) InTeam(teamID string) bool {
	return p.TeamID != nil && *p.TeamID == teamID
}

// HasTeam reports whether the profile points at any team.
func (p *Profile) HasTeam() bool {
	return p.TeamID != nil && *p.TeamID != ""
}

// TeamRef is the denormalised team pointer stored on a profile.
type TeamRef struct {
	ID   string
	Name string
}

// ProfileUpdate is a batch of field writes applied to one profile. Nil fields
// are left untouched.
type ProfileUpdate struct {
	FirstName         *string
	LastName          *string
	Status            *Status
	SetTeam           *TeamRef
	ClearTeam         bool
	PushToken         *string
	AddManagedTeam    string
	RemoveManagedTeam string
}

// ProfileQuery filters a listing ordered by first name, then id.
type ProfileQuery struct {
	Role   Role
	Status Status
	TeamID string
	IDs    []string
	After  *store.Cursor // Key holds the first name
	Limit  int
}
