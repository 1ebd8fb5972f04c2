package membership

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
	"github.com/DhavalSuthar-24/clubhub/pkg/rmiddleware"
	"github.com/DhavalSuthar-24/clubhub/pkg/validator"
)

// TeamReader resolves which team a request or route refers to.
type TeamReader interface {
	GetTeam(ctx context.Context, id string) (*team.Team, error)
	GetRequest(ctx context.Context, id string) (*team.Request, error)
}

type InvitationRequest struct {
	PlayerID string `json:"player_id" binding:"required,uuid" example:"3f1c2d7e-2b7a-4e1e-9a53-8d5f1c0a9b11"`
}

type MembershipController struct {
	engine *Engine
	teams  TeamReader
}

func NewMembershipController(engine *Engine, teams TeamReader) *MembershipController {
	return &MembershipController{engine: engine, teams: teams}
}

// canManage reports whether the caller may act for the team: admins always,
// managers only for teams they manage.
func canManage(p *user.Profile, t *team.Team) bool {
	if p == nil || t == nil {
		return false
	}
	return p.Role == user.RoleAdmin || (p.Role == user.RoleManager && t.ManagerID == p.ID)
}

// canDecide reports whether the caller may approve (accept) or reject req.
// Only the invited player accepts an invitation; the team's manager may still
// withdraw it by rejecting. Join requests are decided by the team's manager.
func canDecide(p *user.Profile, t *team.Team, req *team.Request, accept bool) bool {
	if p == nil {
		return false
	}
	if req.Type == team.RequestInvitation {
		if p.ID == req.PlayerID {
			return true
		}
		return !accept && canManage(p, t)
	}
	return canManage(p, t)
}

func (mc *MembershipController) managedTeam(c *gin.Context, teamID string) (*team.Team, bool) {
	t, err := mc.teams.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return nil, false
	}
	if t == nil {
		responses.SendAppError(c, ErrTeamNotFound)
		return nil, false
	}
	if !canManage(rmiddleware.CurrentProfile(c), t) {
		responses.SendAppError(c, ErrNotTeamManager)
		return nil, false
	}
	return t, true
}

// CreateJoinRequest godoc
// @Summary Request to join a team
// @Description The current player asks to join an approved team that has room.
// @Tags Membership
// @Produce json
// @Param team_id path string true "Team ID"
// @Success 201 {object} responses.SuccessResponse{data=team.Request} "Join request sent"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Failure 422 {object} responses.ErrorResponse "Precondition failed (duplicate, member, team full or not approved)"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/requests [post]
func (mc *MembershipController) CreateJoinRequest(c *gin.Context) {
	p := rmiddleware.CurrentProfile(c)
	if p == nil {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	req, err := mc.engine.CreateJoinRequest(c.Request.Context(), p.ID, c.Param("team_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Your request to join "+req.TeamName+" has been sent for approval.", req)
}

// ListTeamRequests godoc
// @Summary List pending requests of a team
// @Tags Membership
// @Produce json
// @Param team_id path string true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=[]team.Request} "Pending requests"
// @Failure 403 {object} responses.ErrorResponse "Not the team's manager"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/requests [get]
func (mc *MembershipController) ListTeamRequests(c *gin.Context) {
	t, ok := mc.managedTeam(c, c.Param("team_id"))
	if !ok {
		return
	}
	requests, err := mc.engine.PendingRequestsForTeam(c.Request.Context(), t.ID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Requests retrieved successfully", requests)
}

// CreateInvitation godoc
// @Summary Invite a player to a team
// @Tags Membership
// @Accept json
// @Produce json
// @Param team_id path string true "Team ID"
// @Param invitation body InvitationRequest true "Player to invite"
// @Success 201 {object} responses.SuccessResponse{data=team.Request} "Invitation sent"
// @Failure 403 {object} responses.ErrorResponse "Not the team's manager"
// @Failure 422 {object} responses.ErrorResponse "Precondition failed"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/invitations [post]
func (mc *MembershipController) CreateInvitation(c *gin.Context) {
	var body InvitationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	t, ok := mc.managedTeam(c, c.Param("team_id"))
	if !ok {
		return
	}

	manager := rmiddleware.CurrentProfile(c)
	req, err := mc.engine.CreateInvitation(c.Request.Context(), manager.ID, t.ID, body.PlayerID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, req.PlayerName+" has been invited to join "+t.Name, req)
}

// ApproveRequest godoc
// @Summary Approve a request
// @Description Adds the player to the roster and links the profile. Re-running on an approved request is a no-op.
// @Tags Membership
// @Produce json
// @Param request_id path string true "Request ID"
// @Success 200 {object} responses.SuccessResponse{data=team.Request} "Request approved"
// @Failure 403 {object} responses.ErrorResponse "Not allowed to decide this request"
// @Failure 404 {object} responses.ErrorResponse "Request not found"
// @Failure 422 {object} responses.ErrorResponse "Precondition failed (rejected, team full, other team)"
// @Failure 503 {object} responses.ErrorResponse "Store unavailable, request left pending"
// @Security ApiKeyAuth
// @Router /requests/{request_id}/approve [post]
func (mc *MembershipController) ApproveRequest(c *gin.Context) {
	if !mc.authorizeDecision(c, true) {
		return
	}
	req, err := mc.engine.ApproveRequest(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Request approved successfully", req)
}

// RejectRequest godoc
// @Summary Reject a request
// @Tags Membership
// @Produce json
// @Param request_id path string true "Request ID"
// @Success 200 {object} responses.SuccessResponse{data=team.Request} "Request rejected"
// @Failure 403 {object} responses.ErrorResponse "Not allowed to decide this request"
// @Failure 404 {object} responses.ErrorResponse "Request not found"
// @Failure 422 {object} responses.ErrorResponse "Request already approved"
// @Security ApiKeyAuth
// @Router /requests/{request_id}/reject [post]
func (mc *MembershipController) RejectRequest(c *gin.Context) {
	if !mc.authorizeDecision(c, false) {
		return
	}
	req, err := mc.engine.RejectRequest(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Request rejected successfully", req)
}

func (mc *MembershipController) authorizeDecision(c *gin.Context, accept bool) bool {
	ctx := c.Request.Context()
	req, err := mc.teams.GetRequest(ctx, c.Param("request_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return false
	}
	if req == nil {
		responses.SendAppError(c, ErrRequestNotFound)
		return false
	}
	t, err := mc.teams.GetTeam(ctx, req.TeamID)
	if err != nil {
		responses.SendAppError(c, err)
		return false
	}
	if t == nil {
		responses.SendAppError(c, ErrTeamNotFound)
		return false
	}
	if !canDecide(rmiddleware.CurrentProfile(c), t, req, accept) {
		responses.SendAppError(c, ErrNotTeamManager)
		return false
	}
	return true
}

// RemovePlayer godoc
// @Summary Remove a player from a team
// @Tags Membership
// @Produce json
// @Param team_id path string true "Team ID"
// @Param player_id path string true "Player ID"
// @Success 200 {object} responses.SuccessResponse "Player removed"
// @Failure 403 {object} responses.ErrorResponse "Not the team's manager"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/players/{player_id} [delete]
func (mc *MembershipController) RemovePlayer(c *gin.Context) {
	t, ok := mc.managedTeam(c, c.Param("team_id"))
	if !ok {
		return
	}
	if err := mc.engine.RemovePlayer(c.Request.Context(), t.ID, c.Param("player_id")); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Player removed from team", nil)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Description Releases every player on the roster, closes pending requests and deletes the team.
// @Tags Membership
// @Produce json
// @Param team_id path string true "Team ID"
// @Success 200 {object} responses.SuccessResponse "Team deleted"
// @Failure 403 {object} responses.ErrorResponse "Not the team's manager"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Failure 503 {object} responses.ErrorResponse "Store unavailable, team left in place"
// @Security ApiKeyAuth
// @Router /teams/{team_id} [delete]
func (mc *MembershipController) DeleteTeam(c *gin.Context) {
	t, ok := mc.managedTeam(c, c.Param("team_id"))
	if !ok {
		return
	}
	if err := mc.engine.DeleteTeam(c.Request.Context(), t.ID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, t.Name+" has been deleted", nil)
}

// MyRequests godoc
// @Summary List the current user's requests and invitations
// @Tags Membership
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]team.Request} "Requests"
// @Security ApiKeyAuth
// @Router /users/me/requests [get]
func (mc *MembershipController) MyRequests(c *gin.Context) {
	p := rmiddleware.CurrentProfile(c)
	if p == nil {
		responses.Unauthorized(c, "User not authenticated")
		return
	}
	requests, err := mc.engine.RequestsForPlayer(c.Request.Context(), p.ID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Requests retrieved successfully", requests)
}
