package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/clubhub/internal/event"
	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/internal/store/memory"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/rmiddleware"
	"github.com/DhavalSuthar-24/clubhub/pkg/token"
)

const secret = "event-test-secret"

func setup(t *testing.T) (*memory.Store, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.CreateProfile(ctx, &user.Profile{ID: "m1", Email: "m1@club.test", Role: user.RoleManager}))
	require.NoError(t, s.CreateProfile(ctx, &user.Profile{ID: "p1", Email: "p1@club.test", Role: user.RolePlayer}))

	r := gin.New()
	event.RegisterEventRoutes(r.Group("/api"), s, middleware.AuthMiddleware(secret), rmiddleware.ManagerOrAdminMiddleware(s))
	return s, r
}

func send(t *testing.T, r *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
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
	return w
}

func TestCreateEvent(t *testing.T) {
	_, r := setup(t)
	date := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)

	w := send(t, r, http.MethodPost, "/api/events", "p1", event.CreateEventRequest{Title: "Cup", Location: "Main Ground", Date: date})
	assert.Equal(t, http.StatusForbidden, w.Code)

	late := date.Add(time.Hour)
	w = send(t, r, http.MethodPost, "/api/events", "m1", event.CreateEventRequest{Title: "Cup", Location: "Main Ground", Date: date, RegistrationDeadline: &late})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(t, r, http.MethodPost, "/api/events", "m1", event.CreateEventRequest{Title: "Cup", Location: "Main Ground", Date: date})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env struct {
		Data event.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "m1", env.Data.CreatedBy)
	assert.True(t, env.Data.Date.Equal(date))

	w = send(t, r, http.MethodGet, "/api/events/"+env.Data.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = send(t, r, http.MethodGet, "/api/events/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEventsFilters(t *testing.T) {
	s, r := setup(t)
	ctx := context.Background()
	now := time.Now()
	for id, offset := range map[string]time.Duration{"past": -48 * time.Hour, "soon": 24 * time.Hour, "later": 96 * time.Hour} {
		require.NoError(t, s.CreateEvent(ctx, &event.Event{ID: id, Title: id, Date: now.Add(offset)}))
	}

	ids := func(w *httptest.ResponseRecorder) []string {
		var env struct {
			Data []event.Event `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		out := make([]string, 0, len(env.Data))
		for _, e := range env.Data {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []string{"soon", "later"}, ids(send(t, r, http.MethodGet, "/api/events", "", nil)))
	assert.Equal(t, []string{"later", "soon", "past"}, ids(send(t, r, http.MethodGet, "/api/events?filter=all", "", nil)))
	assert.Equal(t, []string{"soon"}, ids(send(t, r, http.MethodGet, "/api/events?limit=1", "", nil)))
}

func TestIsUpcoming(t *testing.T) {
	now := time.Now()
	assert.True(t, (&event.Event{Date: now}).IsUpcoming(now))
	assert.False(t, (&event.Event{Date: now.Add(-time.Minute)}).IsUpcoming(now))
}
