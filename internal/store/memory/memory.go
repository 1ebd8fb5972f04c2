// Package memory is an in-process document store implementing every
// repository interface. It backs DB_DRIVER=memory and the package tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DhavalSuthar-24/clubhub/internal/auth"
	"github.com/DhavalSuthar-24/clubhub/internal/event"
	"github.com/DhavalSuthar-24/clubhub/internal/news"
	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
)

// Fault is consulted before every operation; a non-nil error is returned
// instead of running it. op is the repository method name.
type Fault func(op string) error

type Store struct {
	mu       sync.RWMutex
	accounts map[string]auth.Account
	profiles map[string]user.Profile
	teams    map[string]team.Team
	requests map[string]team.Request
	events   map[string]event.Event
	news     map[string]news.Item

	fault Fault
	calls map[string]int
	now   func() time.Time
}

var (
	_ user.Repository        = (*Store)(nil)
	_ team.Repository        = (*Store)(nil)
	_ auth.AccountRepository = (*Store)(nil)
	_ event.Repository       = (*Store)(nil)
	_ news.Repository        = (*Store)(nil)
)

func New() *Store {
	return &Store{
		accounts: make(map[string]auth.Account),
		profiles: make(map[string]user.Profile),
		teams:    make(map[string]team.Team),
		requests: make(map[string]team.Request),
		events:   make(map[string]event.Event),
		news:     make(map[string]news.Item),
		calls:    make(map[string]int),
		now:      time.Now,
	}
}

// SetFault installs f; nil removes fault injection.
func (s *Store) SetFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// FailNext makes the next n calls to op fail with err.
func (s *Store) FailNext(op string, n int, err error) {
	var mu sync.Mutex
	left := n
	s.SetFault(func(got string) error {
		if got != op {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		if left <= 0 {
			return nil
		}
		left--
		return err
	})
}

// FailAlways makes every call to op fail with err.
func (s *Store) FailAlways(op string, err error) {
	s.SetFault(func(got string) error {
		if got == op {
			return err
		}
		return nil
	})
}

// Calls reports how many times op was invoked, failed calls included.
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// begin records the call and returns the injected fault, if any. It must be
// called before taking s.mu.
func (s *Store) begin(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls[op]++
	fault := s.fault
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if fault != nil {
		return fault(op)
	}
	return nil
}

// --- Accounts ---

func (s *Store) CreateAccount(ctx context.Context, a *auth.Account) error {
	if err := s.begin(ctx, "CreateAccount"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return auth.ErrEmailTaken
		}
	}
	s.accounts[a.ID] = *a
	return nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if err := s.begin(ctx, "GetAccountByEmail"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*auth.Account, error) {
	if err := s.begin(ctx, "GetAccountByID"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	if err := s.begin(ctx, "UpdatePasswordHash"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return auth.ErrAccountNotFound
	}
	a.PasswordHash = hash
	a.UpdatedAt = s.now()
	s.accounts[id] = a
	return nil
}

// --- Profiles ---

func (s *Store) CreateProfile(ctx context.Context, p *user.Profile) error {
	if err := s.begin(ctx, "CreateProfile"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[p.ID] = cloneProfile(*p)
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*user.Profile, error) {
	if err := s.begin(ctx, "GetProfile"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	p = cloneProfile(p)
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) error {
	if err := s.begin(ctx, "UpdateProfile"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return user.ErrProfileNotFound
	}
	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.SetTeam != nil {
		id, name := upd.SetTeam.ID, upd.SetTeam.Name
		p.TeamID, p.TeamName = &id, &name
	} else if upd.ClearTeam {
		p.TeamID, p.TeamName = nil, nil
	}
	if upd.PushToken != nil {
		p.PushToken = *upd.PushToken
	}
	if upd.AddManagedTeam != "" {
		p.ManagedTeams, _ = p.ManagedTeams.Clone().Add(upd.AddManagedTeam)
	}
	if upd.RemoveManagedTeam != "" {
		p.ManagedTeams, _ = p.ManagedTeams.Remove(upd.RemoveManagedTeam)
	}
	p.UpdatedAt = s.now()
	s.profiles[id] = p
	return nil
}

func (s *Store) ListProfiles(ctx context.Context, q user.ProfileQuery) ([]user.Profile, error) {
	if err := s.begin(ctx, "ListProfiles"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.Profile, 0)
	for _, p := range s.profiles {
		if q.Role != "" && p.Role != q.Role {
			continue
		}
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		if q.TeamID != "" && !p.InTeam(q.TeamID) {
			continue
		}
		if len(q.IDs) > 0 && !slices.Contains(q.IDs, p.ID) {
			continue
		}
		if !q.After.After(p.FirstName, p.ID) {
			continue
		}
		out = append(out, cloneProfile(p))
	}
	slices.SortFunc(out, func(a, b user.Profile) int {
		return cmp.Or(strings.Compare(a.FirstName, b.FirstName), strings.Compare(a.ID, b.ID))
	})
	return limit(out, q.Limit), nil
}

func (s *Store) CountProfiles(ctx context.Context, role user.Role) (int64, error) {
	if err := s.begin(ctx, "CountProfiles"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.profiles {
		if role == "" || p.Role == role {
			n++
		}
	}
	return n, nil
}

// --- Teams ---

func (s *Store) CreateTeam(ctx context.Context, t *team.Team) error {
	if err := s.begin(ctx, "CreateTeam"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Players == nil {
		t.Players = []string{}
	}
	s.teams[t.ID] = cloneTeam(*t)
	return nil
}

func (s *Store) GetTeam(ctx context.Context, id string) (*team.Team, error) {
	if err := s.begin(ctx, "GetTeam"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, nil
	}
	t = cloneTeam(t)
	return &t, nil
}

func (s *Store) ListTeams(ctx context.Context, q team.TeamQuery) ([]team.Team, error) {
	if err := s.begin(ctx, "ListTeams"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, t := range s.teams {
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.ManagerID != "" && t.ManagerID != q.ManagerID {
			continue
		}
		if q.NameFrom != "" && t.Name < q.NameFrom {
			continue
		}
		if q.NameTo != "" && t.Name >= q.NameTo {
			continue
		}
		if !q.After.After(t.Name, t.ID) {
			continue
		}
		out = append(out, cloneTeam(t))
	}
	slices.SortFunc(out, func(a, b team.Team) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	return limit(out, q.Limit), nil
}

func (s *Store) UpdateTeamStatus(ctx context.Context, id string, status team.Status) error {
	if err := s.begin(ctx, "UpdateTeamStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return team.ErrTeamNotFound
	}
	t.Status = status
	t.UpdatedAt = s.now()
	s.teams[id] = t
	return nil
}

func (s *Store) CountTeams(ctx context.Context, status team.Status) (int64, error) {
	if err := s.begin(ctx, "CountTeams"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, t := range s.teams {
		if status == "" || t.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	if err := s.begin(ctx, "DeleteTeam"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.teams, id)
	return nil
}

func (s *Store) AddPlayer(ctx context.Context, teamID, playerID string) error {
	if err := s.begin(ctx, "AddPlayer"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return team.ErrTeamNotFound
	}
	if !t.HasRoomFor(playerID) {
		return team.ErrTeamFull
	}
	players, added := t.Players.Clone().Add(playerID)
	if !added {
		return nil
	}
	t.Players = players
	t.UpdatedAt = s.now()
	s.teams[teamID] = t
	return nil
}

func (s *Store) RemovePlayer(ctx context.Context, teamID, playerID string) error {
	if err := s.begin(ctx, "RemovePlayer"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return team.ErrTeamNotFound
	}
	players, removed := t.Players.Remove(playerID)
	if !removed {
		return nil
	}
	t.Players = players
	t.UpdatedAt = s.now()
	s.teams[teamID] = t
	return nil
}

// --- Requests ---

func (s *Store) CreateRequest(ctx context.Context, r *team.Request) error {
	if err := s.begin(ctx, "CreateRequest"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	s.requests[r.ID] = *r
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*team.Request, error) {
	if err := s.begin(ctx, "GetRequest"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Store) FindPendingRequest(ctx context.Context, playerID, teamID string) (*team.Request, error) {
	if err := s.begin(ctx, "FindPendingRequest"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.PlayerID == playerID && r.TeamID == teamID && r.IsPending() {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *Store) ListRequests(ctx context.Context, q team.RequestQuery) ([]team.Request, error) {
	if err := s.begin(ctx, "ListRequests"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]team.Request, 0)
	for _, r := range s.requests {
		if q.PlayerID != "" && r.PlayerID != q.PlayerID {
			continue
		}
		if q.TeamID != "" && r.TeamID != q.TeamID {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.Type != "" && r.Type != q.Type {
			continue
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b team.Request) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return limit(out, q.Limit), nil
}

func (s *Store) SetRequestStatus(ctx context.Context, id string, status team.RequestStatus) error {
	if err := s.begin(ctx, "SetRequestStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return team.ErrRequestNotFound
	}
	r.Status = status
	r.UpdatedAt = s.now()
	s.requests[id] = r
	return nil
}

// --- Events ---

func (s *Store) CreateEvent(ctx context.Context, e *event.Event) error {
	if err := s.begin(ctx, "CreateEvent"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = *e
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	if err := s.begin(ctx, "GetEvent"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *Store) ListEvents(ctx context.Context, q event.Query) ([]event.Event, error) {
	if err := s.begin(ctx, "ListEvents"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]event.Event, 0)
	for _, e := range s.events {
		if q.From != nil && e.Date.Before(*q.From) {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b event.Event) int {
		if q.From != nil {
			return cmp.Or(a.Date.Compare(b.Date), strings.Compare(a.ID, b.ID))
		}
		return cmp.Or(b.Date.Compare(a.Date), strings.Compare(a.ID, b.ID))
	})
	return limit(out, q.Limit), nil
}

func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	if err := s.begin(ctx, "CountEvents"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events)), nil
}

// --- News ---

func (s *Store) CreateNews(ctx context.Context, item *news.Item) error {
	if err := s.begin(ctx, "CreateNews"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news[item.ID] = *item
	return nil
}

func (s *Store) GetNews(ctx context.Context, id string) (*news.Item, error) {
	if err := s.begin(ctx, "GetNews"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.news[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *Store) ListNews(ctx context.Context, n int) ([]news.Item, error) {
	if err := s.begin(ctx, "ListNews"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]news.Item, 0, len(s.news))
	for _, item := range s.news {
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b news.Item) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return limit(out, n), nil
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func cloneProfile(p user.Profile) user.Profile {
	if p.TeamID != nil {
		id := *p.TeamID
		p.TeamID = &id
	}
	if p.TeamName != nil {
		name := *p.TeamName
		p.TeamName = &name
	}
	p.ManagedTeams = p.ManagedTeams.Clone()
	return p
}

func cloneTeam(t team.Team) team.Team {
	t.Players = t.Players.Clone()
	if t.MaxPlayers != nil {
		n := *t.MaxPlayers
		t.MaxPlayers = &n
	}
	return t
}
