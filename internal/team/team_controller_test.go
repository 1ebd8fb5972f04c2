package team_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/internal/store/memory"
	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/token"
)

const secret = "team-test-secret"

func setup(t *testing.T) (*memory.Store, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := memory.New()
	ctx := context.Background()
	for _, p := range []user.Profile{
		{ID: "admin", Email: "admin@club.test", FirstName: "Ada", Role: user.RoleAdmin},
		{ID: "m1", Email: "m1@club.test", FirstName: "Mia", LastName: "Stone", Role: user.RoleManager},
		{ID: "p1", Email: "p1@club.test", FirstName: "Pat", Role: user.RolePlayer},
	} {
		require.NoError(t, s.CreateProfile(ctx, &p))
	}

	r := gin.New()
	team.TeamRoutes(r.Group("/api"), s, s, s, middleware.AuthMiddleware(secret))
	return s, r
}

func call(t *testing.T, r *gin.Engine, method, path, userID string, body any) (int, json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		tok, _, err := token.GenerateJWT(userID, userID+"@club.test", "", secret, 5)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env.Data
}

func TestRegisterAndApproveTeam(t *testing.T) {
	s, r := setup(t)
	ctx := context.Background()

	code, data := call(t, r, http.MethodPost, "/api/teams", "m1", team.RegisterTeamRequest{Name: "Falcons U18", Club: "Riverside FC"})
	require.Equal(t, http.StatusCreated, code)
	var created team.Team
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, team.StatusPending, created.Status)
	assert.Equal(t, "m1", created.ManagerID)
	assert.Equal(t, "Mia Stone", created.ManagerName)

	manager, err := s.GetProfile(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, manager.ManagedTeams.Contains(created.ID))

	code, data = call(t, r, http.MethodGet, "/api/users/me/teams", "m1", nil)
	require.Equal(t, http.StatusOK, code)
	var mine []team.Team
	require.NoError(t, json.Unmarshal(data, &mine))
	require.Len(t, mine, 1)

	code, _ = call(t, r, http.MethodPut, "/api/admin/teams/"+created.ID+"/status", "m1", team.UpdateTeamStatusRequest{Status: team.StatusApproved})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, r, http.MethodPut, "/api/admin/teams/"+created.ID+"/status", "admin", gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, data = call(t, r, http.MethodPut, "/api/admin/teams/"+created.ID+"/status", "admin", team.UpdateTeamStatusRequest{Status: team.StatusApproved})
	require.Equal(t, http.StatusOK, code)
	var approved team.Team
	require.NoError(t, json.Unmarshal(data, &approved))
	assert.Equal(t, team.StatusApproved, approved.Status)

	code, _ = call(t, r, http.MethodPut, "/api/admin/teams/missing/status", "admin", team.UpdateTeamStatusRequest{Status: team.StatusApproved})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetTeamWithMembers(t *testing.T) {
	s, r := setup(t)
	require.NoError(t, s.CreateTeam(context.Background(), &team.Team{
		ID: "t1", Name: "Falcons", Club: "Riverside", ManagerID: "m1", Status: team.StatusApproved, Players: []string{"p1"},
	}))

	code, data := call(t, r, http.MethodGet, "/api/teams/t1", "", nil)
	require.Equal(t, http.StatusOK, code)
	var details team.TeamDetails
	require.NoError(t, json.Unmarshal(data, &details))
	assert.Equal(t, "Falcons", details.Name)
	require.Len(t, details.Members, 1)
	assert.Equal(t, "Pat", details.Members[0].FirstName)

	code, _ = call(t, r, http.MethodGet, "/api/teams/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTeamCapacity(t *testing.T) {
	two := 2
	tm := team.Team{MaxPlayers: &two, Players: []string{"a"}}
	assert.False(t, tm.IsFull())
	assert.True(t, tm.HasRoomFor("b"))

	tm.Players = append(tm.Players, "b")
	assert.True(t, tm.IsFull())
	assert.False(t, tm.HasRoomFor("c"))
	assert.True(t, tm.HasRoomFor("a"), "a player already on the roster always fits")

	unlimited := team.Team{Players: []string{"a", "b", "c"}}
	assert.False(t, unlimited.IsFull())
}
