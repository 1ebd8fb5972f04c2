package news_test

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

	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/internal/news"
	"github.com/DhavalSuthar-24/clubhub/internal/store/memory"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/rmiddleware"
	"github.com/DhavalSuthar-24/clubhub/pkg/token"
)

const secret = "news-test-secret"

func TestNewsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.CreateProfile(ctx, &user.Profile{ID: "admin", Email: "admin@club.test", Role: user.RoleAdmin}))
	require.NoError(t, s.CreateProfile(ctx, &user.Profile{ID: "p1", Email: "p1@club.test", Role: user.RolePlayer}))
	require.NoError(t, s.CreateNews(ctx, &news.Item{ID: "old", Title: "Old", CreatedAt: time.Now().Add(-time.Hour)}))

	r := gin.New()
	news.RegisterNewsRoutes(r.Group("/api"), s, middleware.AuthMiddleware(secret), rmiddleware.ManagerOrAdminMiddleware(s))

	send := func(method, path, userID string, body any) *httptest.ResponseRecorder {
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

	w := send(http.MethodPost, "/api/news", "", news.CreateNewsRequest{Title: "Hi", Content: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = send(http.MethodPost, "/api/news", "p1", news.CreateNewsRequest{Title: "Hi", Content: "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = send(http.MethodPost, "/api/news", "admin", news.CreateNewsRequest{Title: "Hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(http.MethodPost, "/api/news", "admin", news.CreateNewsRequest{Title: "Season kickoff", Content: "Registrations are open."})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data news.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "admin@club.test", created.Data.Author)

	w = send(http.MethodGet, "/api/news", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []news.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)
	assert.Equal(t, "Season kickoff", list.Data[0].Title)

	w = send(http.MethodGet, "/api/news?limit=1", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)

	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/news/old", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, send(http.MethodGet, "/api/news/nope", "", nil).Code)
}
