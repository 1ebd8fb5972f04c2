package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/internal/apperr"
	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
	"github.com/DhavalSuthar-24/clubhub/pkg/validator"
)

// ProfileStore is the slice of the profile store the auth endpoints use.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *user.Profile) error
	GetProfile(ctx context.Context, id string) (*user.Profile, error)
	UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) error
}

// JoinRequester files the join request a player picks at registration.
type JoinRequester interface {
	CreateJoinRequest(ctx context.Context, playerID, teamID string) (*team.Request, error)
}

type AuthResponse struct {
	Session     *Session      `json:"session"`
	Profile     *user.Profile `json:"profile"`
	JoinRequest *team.Request `json:"join_request,omitempty"`
}

type MeResponse struct {
	Identity Identity      `json:"identity"`
	Profile  *user.Profile `json:"profile"`
	Role     user.Role     `json:"role"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
}

type AuthController struct {
	provider Provider
	profiles ProfileStore
	joins    JoinRequester
	log      *slog.Logger
}

func NewAuthController(provider Provider, profiles ProfileStore, joins JoinRequester, log *slog.Logger) *AuthController {
	if log == nil {
		log = slog.Default()
	}
	return &AuthController{provider: provider, profiles: profiles, joins: joins, log: log}
}

// @Summary      Register a new user
// @Description  Creates an account and profile and signs a new client instance in. Players pick a team and a join request is filed for them.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "User registration details"
// @Success      201   {object} responses.SuccessResponse{data=AuthResponse} "User registered successfully"
// @Failure      400   {object} responses.ErrorResponse "Validation error or invalid input"
// @Failure      422   {object} responses.ErrorResponse "An account with this email already exists"
// @Failure      500   {object} responses.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	ctx := c.Request.Context()
	session, err := ac.provider.Register(ctx, "", req.Email, req.Password)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	role := user.ParseRole(req.Role)
	status := user.StatusActive
	if role == user.RolePlayer {
		status = user.StatusPendingTeamApproval
	}
	now := time.Now()
	profile := &user.Profile{
		ID:           session.Identity.ID,
		Email:        session.Identity.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Status:       status,
		ManagedTeams: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := ac.profiles.CreateProfile(ctx, profile); err != nil {
		responses.SendAppError(c, err)
		return
	}
	// The identity was announced before the profile existed.
	if err := ac.provider.Refresh(ctx, session.ClientID); err != nil {
		ac.log.Warn("session_refresh_failed", "client_id", session.ClientID, "error", err)
	}

	resp := AuthResponse{Session: session, Profile: profile}
	message := "Registration successful! You are now registered as a " + string(role) + "."
	if role == user.RolePlayer && req.TeamID != "" {
		joinReq, err := ac.joins.CreateJoinRequest(ctx, profile.ID, req.TeamID)
		if err != nil {
			// The account exists either way; the player can ask again later.
			ac.log.Warn("registration_join_request_failed", "identity_id", profile.ID, "team_id", req.TeamID, "error", err)
			message = "Registration successful, but your join request could not be sent: " + apperr.UserMessage(err)
		} else {
			resp.JoinRequest = joinReq
			message = "Registration successful! Your request to join " + joinReq.TeamName + " is pending approval."
		}
	}
	responses.SendSuccess(c, http.StatusCreated, message, resp)
}

// @Summary      Sign in
// @Description  Signs a new client instance in with email and password. The client id in the response names its session stream.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Login credentials"
// @Success      200   {object} responses.SuccessResponse{data=AuthResponse} "Login successful"
// @Failure      400   {object} responses.ErrorResponse "Invalid input"
// @Failure      401   {object} responses.ErrorResponse "Invalid email or password"
// @Router       /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	ctx := c.Request.Context()
	session, err := ac.provider.SignIn(ctx, "", req.Email, req.Password)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	profile, err := ac.profiles.GetProfile(ctx, session.Identity.ID)
	if err != nil {
		ac.log.Warn("login_profile_read_failed", "identity_id", session.Identity.ID, "error", err)
	}
	responses.SendSuccess(c, http.StatusOK, "Login successful", AuthResponse{Session: session, Profile: profile})
}

// @Summary      Sign out
// @Description  Signs out the client instance named in the token. Its session stream switches to the guest tree.
// @Tags         Auth
// @Produce      json
// @Success      200   {object} responses.SuccessResponse "Logged out"
// @Failure      401   {object} responses.ErrorResponse "Unauthorized"
// @Security     ApiKeyAuth
// @Router       /auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.provider.SignOut(c.Request.Context(), middleware.GetClientIDFromContext(c)); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

// @Summary      Request a password reset
// @Description  Emails a reset link when an account exists for the address. The response is the same either way.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  ForgotPasswordRequest  true  "Account email"
// @Success      200   {object} responses.SuccessResponse "Reset link sent if the account exists"
// @Failure      400   {object} responses.ErrorResponse "Invalid input"
// @Failure      500   {object} responses.ErrorResponse "Internal server error"
// @Router       /auth/password/forgot [post]
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if err := ac.provider.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "If an account exists for this email, a reset link has been sent", nil)
}

// @Summary      Reset password
// @Description  Sets a new password using the token from the reset email. Every client signed in to the account is signed out.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  ResetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object} responses.SuccessResponse "Password changed"
// @Failure      400   {object} responses.ErrorResponse "Invalid input"
// @Failure      422   {object} responses.ErrorResponse "Reset link is invalid or has expired"
// @Router       /auth/password/reset [post]
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if err := ac.provider.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Your password has been changed. Please sign in again.", nil)
}

// @Summary      Current user
// @Description  Returns the identity in the token and its profile.
// @Tags         Auth
// @Produce      json
// @Success      200   {object} responses.SuccessResponse{data=MeResponse} "Current user"
// @Failure      401   {object} responses.ErrorResponse "Unauthorized"
// @Security     ApiKeyAuth
// @Router       /auth/me [get]
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	profile, err := ac.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	resp := MeResponse{
		Identity: Identity{ID: userID, Email: c.GetString(middleware.AuthEmailKey)},
		Profile:  profile,
		Role:     user.RolePlayer,
	}
	if profile != nil {
		resp.Role = profile.Role
	}
	responses.SendSuccess(c, http.StatusOK, "Profile retrieved successfully", resp)
}

// @Summary      Edit profile
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        profile  body  UpdateProfileRequest  true  "Fields to change"
// @Success      200   {object} responses.SuccessResponse{data=user.Profile} "Profile updated"
// @Failure      400   {object} responses.ErrorResponse "Invalid input"
// @Failure      404   {object} responses.ErrorResponse "Profile not found"
// @Security     ApiKeyAuth
// @Router       /auth/me [put]
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	ctx := c.Request.Context()
	if err := ac.profiles.UpdateProfile(ctx, userID, user.ProfileUpdate{FirstName: req.FirstName, LastName: req.LastName}); err != nil {
		responses.SendAppError(c, err)
		return
	}
	profile, err := ac.profiles.GetProfile(ctx, userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile updated successfully", profile)
}
