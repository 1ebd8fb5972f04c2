package news

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DhavalSuthar-24/clubhub/internal/middleware"
	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
	"github.com/DhavalSuthar-24/clubhub/pkg/validator"
)

type NewsController struct {
	repo Repository
}

func NewNewsController(repo Repository) *NewsController {
	return &NewsController{repo: repo}
}

// CreateNews godoc
// @Summary Publish a news item
// @Tags News
// @Accept json
// @Produce json
// @Param news body CreateNewsRequest true "News content"
// @Success 201 {object} responses.SuccessResponse{data=Item} "News published successfully"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 403 {object} responses.ErrorResponse "Forbidden"
// @Security ApiKeyAuth
// @Router /news [post]
func (nc *NewsController) CreateNews(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	now := time.Now()
	item := &Item{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Author:    c.GetString(middleware.AuthEmailKey),
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := nc.repo.CreateNews(c.Request.Context(), item); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "News published successfully", item)
}

// ListNews godoc
// @Summary List news
// @Description Newest items first.
// @Tags News
// @Produce json
// @Param limit query int false "Maximum number of items"
// @Success 200 {object} responses.SuccessResponse{data=[]Item} "List of news"
// @Router /news [get]
func (nc *NewsController) ListNews(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := nc.repo.ListNews(c.Request.Context(), limit)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "News retrieved successfully", items)
}

// GetNews godoc
// @Summary Get a news item
// @Tags News
// @Produce json
// @Param news_id path string true "News ID"
// @Success 200 {object} responses.SuccessResponse{data=Item} "News details"
// @Failure 404 {object} responses.ErrorResponse "News not found"
// @Router /news/{news_id} [get]
func (nc *NewsController) GetNews(c *gin.Context) {
	item, err := nc.repo.GetNews(c.Request.Context(), c.Param("news_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	if item == nil {
		responses.SendError(c, http.StatusNotFound, "News not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "News retrieved successfully", item)
}
