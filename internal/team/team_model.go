// team/model.go
package team

import (
	"time"

	"github.com/DhavalSuthar-24/clubhub/internal/models"
	"github.com/DhavalSuthar-24/clubhub/internal/store"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known team status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Team represents a club team and its roster.
type Team struct {
	ID          string           `json:"id" gorm:"primaryKey;size:36"`
	Name        string           `json:"name" gorm:"not null;index"`
	Club        string           `json:"club" gorm:"not null"`
	Description string           `json:"description"`
	ManagerID   string           `json:"manager_id" gorm:"index;size:36"`
	ManagerName string           `json:"manager_name"`
	Status      Status           `json:"status" gorm:"index;default:'pending'"`
	Players     models.StringSet `json:"players" gorm:"type:json"`
	MaxPlayers  *int             `json:"max_players"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (t *Team) HasPlayer(playerID string) bool {
	return t.Players.Contains(playerID)
}

// IsFull reports whether the roster has reached MaxPlayers.
func (t *Team) IsFull() bool {
	return t.MaxPlayers != nil && len(t.Players) >= *t.MaxPlayers
}

// HasRoomFor reports whether adding playerID keeps the roster within
// capacity. A player already on the roster always fits.
func (t *Team) HasRoomFor(playerID string) bool {
	return t.HasPlayer(playerID) || !t.IsFull()
}

type RequestType string

const (
	RequestJoin       RequestType = "join"
	RequestInvitation RequestType = "invitation"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Request is a player/team affiliation proposal. Requests are never deleted.
type Request struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36"`
	PlayerID    string        `json:"player_id" gorm:"index:idx_request_pair;size:36"`
	PlayerName  string        `json:"player_name"`
	PlayerEmail string        `json:"player_email"`
	TeamID      string        `json:"team_id" gorm:"index:idx_request_pair;size:36"`
	TeamName    string        `json:"team_name"`
	ManagerID   string        `json:"manager_id" gorm:"index;size:36"`
	Type        RequestType   `json:"type"`
	Status      RequestStatus `json:"status" gorm:"index;default:'pending'"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Request) TableName() string {
	return "team_requests"
}

func (r *Request) IsPending() bool {
	return r.Status == RequestPending
}

// TeamQuery filters a team listing ordered by name, then id. NameFrom/NameTo
// bound a half-open range [NameFrom, NameTo).
type TeamQuery struct {
	Status    Status
	ManagerID string
	NameFrom  string
	NameTo    string
	After     *store.Cursor // Key holds the name
	Limit     int
}

// RequestQuery filters requests, newest first.
type RequestQuery struct {
	PlayerID string
	TeamID   string
	Status   RequestStatus
	Type     RequestType
	Limit    int
}
