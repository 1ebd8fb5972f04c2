package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/DhavalSuthar-24/clubhub/config"
	"github.com/DhavalSuthar-24/clubhub/internal/auth"
	"github.com/DhavalSuthar-24/clubhub/internal/directory"
	"github.com/DhavalSuthar-24/clubhub/internal/membership"
	"github.com/DhavalSuthar-24/clubhub/internal/session"
	"github.com/DhavalSuthar-24/clubhub/internal/store/memory"
	"github.com/DhavalSuthar-24/clubhub/pkg/retry"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.FrontendURL = "http://localhost:3000"
	cfg.JWT.AccessTokenSecret = "router-test-secret"
	cfg.JWT.AccessTokenExpiryMinutes = 5

	s := memory.New()
	provider := auth.NewService(s, cfg.JWT.AccessTokenSecret, 5, auth.WithPasswordCost(bcrypt.MinCost))
	resolver := session.NewRoleResolver(s, retry.Policy{MaxAttempts: 1}, nil)
	hub := session.NewHub(provider, resolver, nil)
	t.Cleanup(func() {
		hub.Close()
		provider.Close()
	})

	return SetupRoutes(Deps{
		Config:    cfg,
		Provider:  provider,
		Profiles:  s,
		Teams:     s,
		Events:    s,
		News:      s,
		Hub:       hub,
		Engine:    membership.NewEngine(s, s),
		Directory: directory.New(s, s, s),
	})
}

func TestSetupRoutes(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/healthz", "/", "/api/teams", "/api/events", "/api/news"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	for _, path := range []string{"/api/players", "/api/admin/stats", "/api/auth/me", "/api/users/me/requests"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRegisterThenSessionReflectsRole(t *testing.T) {
	r := newTestRouter(t)

	body, err := json.Marshal(gin.H{
		"email": "mo@club.test", "password": "secret1",
		"first_name": "Mo", "last_name": "Khan", "role": "manager",
	})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered struct {
		Data auth.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	sess := registered.Data.Session
	require.NotNil(t, sess)
	sessionPath := "/api/session/" + sess.ClientID

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, sessionPath, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "session state needs a token")

	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, sessionPath, nil)
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
		r.ServeHTTP(w, req)
		var env struct {
			Data session.SnapshotResponse `json:"data"`
		}
		if json.Unmarshal(w.Body.Bytes(), &env) != nil {
			return false
		}
		return env.Data.Tree == session.TreeManager
	}, 2*time.Second, 10*time.Millisecond)
}
