package event

import (
	"time"

	"github.com/DhavalSuthar-24/clubhub/internal/models"
)

// Event is a club fixture or gathering players can enter.
type Event struct {
	ID                   string           `json:"id" gorm:"primaryKey;size:36"`
	Title                string           `json:"title" gorm:"not null"`
	Description          string           `json:"description"`
	Location             string           `json:"location"`
	Date                 time.Time        `json:"date" gorm:"index;not null"`
	RegistrationDeadline *time.Time       `json:"registration_deadline"`
	CreatedBy            string           `json:"created_by" gorm:"size:36"`
	Entries              models.StringSet `json:"entries" gorm:"type:json"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// IsUpcoming reports whether the event starts at or after now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return !e.Date.Before(now)
}

// Query lists events. With From set only events on or after it are returned,
// soonest first; otherwise all events are returned, latest first.
type Query struct {
	From  *time.Time
	Limit int
}

type CreateEventRequest struct {
	Title                string     `json:"title" binding:"required,max=200" example:"Summer Cup"`
	Description          string     `json:"description" binding:"max=2000"`
	Location             string     `json:"location" binding:"required" example:"Main Ground"`
	Date                 time.Time  `json:"date" binding:"required" example:"2026-07-01T10:00:00Z"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
}
