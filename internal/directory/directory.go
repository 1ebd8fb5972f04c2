// Package directory answers the read-only team and player listings.
package directory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/DhavalSuthar-24/clubhub/internal/store"
	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
)

// PrefixSentinel is appended to a prefix to form the exclusive upper bound
// of a name range. It sorts after every character used in names.
const PrefixSentinel = "\uf8ff"

type TeamStore interface {
	ListTeams(ctx context.Context, q team.TeamQuery) ([]team.Team, error)
	CountTeams(ctx context.Context, status team.Status) (int64, error)
}

type ProfileStore interface {
	ListProfiles(ctx context.Context, q user.ProfileQuery) ([]user.Profile, error)
	CountProfiles(ctx context.Context, role user.Role) (int64, error)
}

type EventCounter interface {
	CountEvents(ctx context.Context) (int64, error)
}

type TeamFilter struct {
	Status     team.Status
	NamePrefix string
}

type PlayerFilter struct {
	Role   user.Role
	TeamID string
}

type TeamPage struct {
	Items []team.Team `json:"items"`
	Next  string      `json:"next,omitempty"`
}

type PlayerPage struct {
	Items []user.Profile `json:"items"`
	Next  string         `json:"next,omitempty"`
}

// Stats feeds the admin dashboard.
type Stats struct {
	Teams        int64 `json:"teams"`
	PendingTeams int64 `json:"pending_teams"`
	Players      int64 `json:"players"`
	Managers     int64 `json:"managers"`
	Events       int64 `json:"events"`
}

type Directory struct {
	teams    TeamStore
	profiles ProfileStore
	events   EventCounter
}

func New(teams TeamStore, profiles ProfileStore, events EventCounter) *Directory {
	return &Directory{teams: teams, profiles: profiles, events: events}
}

// PrefixRange returns the half-open range [prefix, prefix+PrefixSentinel).
// An empty prefix yields an unbounded range.
func PrefixRange(prefix string) (from, to string) {
	if prefix == "" {
		return "", ""
	}
	return prefix, prefix + PrefixSentinel
}

// ListTeams returns teams ordered by name.
func (d *Directory) ListTeams(ctx context.Context, f TeamFilter, page store.Page) (TeamPage, error) {
	page = page.Normalize()
	after, err := store.DecodeCursor(page.After)
	if err != nil {
		return TeamPage{}, err
	}

	from, to := PrefixRange(f.NamePrefix)
	teams, err := d.teams.ListTeams(ctx, team.TeamQuery{
		Status:   f.Status,
		NameFrom: from,
		NameTo:   to,
		After:    after,
		Limit:    page.Limit + 1,
	})
	if err != nil {
		return TeamPage{}, fmt.Errorf("list teams: %w", err)
	}

	out := TeamPage{Items: teams}
	if len(teams) > page.Limit {
		out.Items = teams[:page.Limit]
		last := out.Items[len(out.Items)-1]
		out.Next = store.EncodeCursor(store.Cursor{Key: last.Name, ID: last.ID})
	}
	return out, nil
}

// ListPlayers returns profiles ordered by first name.
func (d *Directory) ListPlayers(ctx context.Context, f PlayerFilter, page store.Page) (PlayerPage, error) {
	page = page.Normalize()
	after, err := store.DecodeCursor(page.After)
	if err != nil {
		return PlayerPage{}, err
	}

	profiles, err := d.profiles.ListProfiles(ctx, user.ProfileQuery{
		Role:   f.Role,
		TeamID: f.TeamID,
		After:  after,
		Limit:  page.Limit + 1,
	})
	if err != nil {
		return PlayerPage{}, fmt.Errorf("list players: %w", err)
	}

	out := PlayerPage{Items: profiles}
	if len(profiles) > page.Limit {
		out.Items = profiles[:page.Limit]
		last := out.Items[len(out.Items)-1]
		out.Next = store.EncodeCursor(store.Cursor{Key: last.FirstName, ID: last.ID})
	}
	return out, nil
}

// Stats counts the documents shown on the admin dashboard.
func (d *Directory) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Teams, err = d.teams.CountTeams(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		s.PendingTeams, err = d.teams.CountTeams(ctx, team.StatusPending)
		return err
	})
	g.Go(func() (err error) {
		s.Players, err = d.profiles.CountProfiles(ctx, user.RolePlayer)
		return err
	})
	g.Go(func() (err error) {
		s.Managers, err = d.profiles.CountProfiles(ctx, user.RoleManager)
		return err
	})
	g.Go(func() (err error) {
		s.Events, err = d.events.CountEvents(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	return s, nil
}
