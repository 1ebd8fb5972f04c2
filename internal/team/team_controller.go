package team

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
	"github.com/DhavalSuthar-24/clubhub/pkg/rmiddleware"
	"github.com/DhavalSuthar-24/clubhub/pkg/validator"
)

// ProfileStore is what team registration needs from the profile store.
type ProfileStore interface {
	UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) error
	ListProfiles(ctx context.Context, q user.ProfileQuery) ([]user.Profile, error)
}

// --- DTOs for requests ---

type RegisterTeamRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100" example:"Falcons U18"`
	Club        string `json:"club" binding:"required,min=3,max=100" example:"Riverside FC"`
	Description string `json:"description" binding:"max=1000"`
	MaxPlayers  *int   `json:"max_players" binding:"omitempty,gte=1" example:"18"`
}

type UpdateTeamStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending approved rejected" example:"approved"`
}

// TeamDetails is a team with its roster resolved to profiles.
type TeamDetails struct {
	Team
	Members []user.Profile `json:"members"`
}

// TeamController handles team registration and review.
type TeamController struct {
	repo     Repository
	profiles ProfileStore
}

// NewTeamController creates a new team controller
func NewTeamController(repo Repository, profiles ProfileStore) *TeamController {
	return &TeamController{repo: repo, profiles: profiles}
}

// RegisterTeam godoc
// @Summary Register a team
// @Description Submits a new team for admin approval. The caller becomes its manager.
// @Tags Teams
// @Accept json
// @Produce json
// @Param team body RegisterTeamRequest true "Team registration data"
// @Success 201 {object} responses.SuccessResponse{data=Team} "Team registration submitted for approval"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /teams [post]
func (tc *TeamController) RegisterTeam(c *gin.Context) {
	manager := rmiddleware.CurrentProfile(c)
	if manager == nil {
		responses.Unauthorized(c, "Please log in to register a team")
		return
	}

	var req RegisterTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	managerName := manager.FullName()
	if managerName == "" {
		managerName = manager.Email
	}
	now := time.Now()
	team := &Team{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Club:        strings.TrimSpace(req.Club),
		Description: strings.TrimSpace(req.Description),
		ManagerID:   manager.ID,
		ManagerName: managerName,
		Status:      StatusPending,
		Players:     []string{},
		MaxPlayers:  req.MaxPlayers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx := c.Request.Context()
	if err := tc.repo.CreateTeam(ctx, team); err != nil {
		responses.SendAppError(c, err)
		return
	}
	if err := tc.profiles.UpdateProfile(ctx, manager.ID, user.ProfileUpdate{AddManagedTeam: team.ID}); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team registration submitted for approval!", team)
}

// GetTeamByID godoc
// @Summary Get a team by its ID
// @Description Retrieves a team and its members.
// @Tags Teams
// @Produce json
// @Param team_id path string true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=TeamDetails} "Team details"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /teams/{team_id} [get]
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	ctx := c.Request.Context()
	team, err := tc.repo.GetTeam(ctx, c.Param("team_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	if team == nil {
		responses.SendAppError(c, ErrTeamNotFound)
		return
	}

	details := TeamDetails{Team: *team, Members: []user.Profile{}}
	if len(team.Players) > 0 {
		members, err := tc.profiles.ListProfiles(ctx, user.ProfileQuery{IDs: team.Players})
		if err != nil {
			responses.SendAppError(c, err)
			return
		}
		details.Members = members
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", details)
}

// GetMyTeams godoc
// @Summary List teams managed by the current user
// @Tags Teams
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]Team} "Managed teams"
// @Security ApiKeyAuth
// @Router /users/me/teams [get]
func (tc *TeamController) GetMyTeams(c *gin.Context) {
	manager := rmiddleware.CurrentProfile(c)
	if manager == nil {
		responses.Unauthorized(c, "User not authenticated")
		return
	}
	teams, err := tc.repo.ListTeams(c.Request.Context(), TeamQuery{ManagerID: manager.ID})
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Teams retrieved successfully", teams)
}

// UpdateTeamStatus godoc
// @Summary Approve or reject a team
// @Description Admin review of a registered team.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param status body UpdateTeamStatusRequest true "New status"
// @Success 200 {object} responses.SuccessResponse{data=Team} "Team status updated"
// @Failure 400 {object} responses.ErrorResponse "Invalid status"
// @Failure 403 {object} responses.ErrorResponse "Forbidden"
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Security ApiKeyAuth
// @Router /admin/teams/{id}/status [put]
func (tc *TeamController) UpdateTeamStatus(c *gin.Context) {
	var req UpdateTeamStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	ctx := c.Request.Context()
	teamID := c.Param("id")
	if err := tc.repo.UpdateTeamStatus(ctx, teamID, req.Status); err != nil {
		responses.SendAppError(c, err)
		return
	}
	team, err := tc.repo.GetTeam(ctx, teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team status updated to '"+string(req.Status)+"'.", team)
}
