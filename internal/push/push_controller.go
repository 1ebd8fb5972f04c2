package push

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
	"github.com/DhavalSuthar-24/clubhub/pkg/validator"
)

// TokenWriter stores a device token on a profile.
type TokenWriter interface {
	UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) error
}

type RegisterTokenRequest struct {
	Token string `json:"token" binding:"max=512" example:"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"`
}

type PushController struct {
	profiles TokenWriter
}

func NewPushController(profiles TokenWriter) *PushController {
	return &PushController{profiles: profiles}
}

// RegisterToken godoc
// @Summary Register a push token
// @Description Stores the device push token of the current user. An empty token unregisters the device.
// @Tags Push
// @Accept json
// @Produce json
// @Param token body RegisterTokenRequest true "Device token"
// @Success 200 {object} responses.SuccessResponse "Push token saved"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Security ApiKeyAuth
// @Router /users/me/push-token [put]
func (pc *PushController) RegisterToken(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	if err := pc.profiles.UpdateProfile(c.Request.Context(), userID, user.ProfileUpdate{PushToken: &req.Token}); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Push token saved", nil)
}
