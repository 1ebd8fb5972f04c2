package session

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
)

// SnapshotResponse adds the screens of the selected tree to a snapshot.
type SnapshotResponse struct {
	Snapshot
	Screens []string `json:"screens"`
}

func newSnapshotResponse(s Snapshot) SnapshotResponse {
	return SnapshotResponse{Snapshot: s, Screens: Screens(s.Tree)}
}

type SessionController struct {
	hub *Hub
}

func NewSessionController(hub *Hub) *SessionController {
	return &SessionController{hub: hub}
}

// clientID returns the path client id once the token is shown to own it.
func (sc *SessionController) clientID(c *gin.Context) (string, bool) {
	clientID := strings.TrimSpace(c.Param("client_id"))
	if clientID == "" || len(clientID) > 64 {
		responses.BadRequest(c, "Invalid client ID")
		return "", false
	}
	if middleware.GetClientIDFromContext(c) != clientID {
		responses.Forbidden(c, "This session belongs to another client")
		return "", false
	}
	return clientID, true
}

func sendHubClosed(c *gin.Context) {
	responses.SendError(c, http.StatusServiceUnavailable, "Session service is shutting down")
}

// GetSession godoc
// @Summary Current session state of a client instance
// @Description Returns identity, role, navigation tree and loading state.
// @Tags Session
// @Produce json
// @Param client_id path string true "Client instance ID returned at sign-in"
// @Success 200 {object} responses.SuccessResponse{data=SnapshotResponse} "Session snapshot"
// @Failure 400 {object} responses.ErrorResponse "Invalid client ID"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 403 {object} responses.ErrorResponse "Token issued for another client"
// @Security ApiKeyAuth
// @Router /session/{client_id} [get]
func (sc *SessionController) GetSession(c *gin.Context) {
	clientID, ok := sc.clientID(c)
	if !ok {
		return
	}
	b, err := sc.hub.Session(clientID)
	if err != nil {
		sendHubClosed(c)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Session retrieved successfully", newSnapshotResponse(b.Snapshot()))
}

// StreamSession godoc
// @Summary Stream session state changes
// @Description Server-sent events, one "session" event per state change, starting with the current state.
// @Tags Session
// @Produce text/event-stream
// @Param client_id path string true "Client instance ID returned at sign-in"
// @Success 200 {object} SnapshotResponse "Stream of session snapshots"
// @Failure 400 {object} responses.ErrorResponse "Invalid client ID"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 403 {object} responses.ErrorResponse "Token issued for another client"
// @Security ApiKeyAuth
// @Router /session/{client_id}/stream [get]
func (sc *SessionController) StreamSession(c *gin.Context) {
	clientID, ok := sc.clientID(c)
	if !ok {
		return
	}
	snapshots, err := sc.hub.Watch(c.Request.Context(), clientID)
	if err != nil {
		sendHubClosed(c)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		s, ok := <-snapshots
		if !ok {
			return false
		}
		c.SSEvent("session", newSnapshotResponse(s))
		return true
	})
}
