package directory

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/clubhub/internal/store"
	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/responses"
)

type DirectoryController struct {
	dir *Directory
}

func NewDirectoryController(dir *Directory) *DirectoryController {
	return &DirectoryController{dir: dir}
}

func pageFromQuery(c *gin.Context) store.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return store.Page{Limit: limit, After: c.Query("cursor")}
}

// ListTeams godoc
// @Summary List teams
// @Description Teams ordered by name. name filters by prefix.
// @Tags Directory
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param name query string false "Name prefix"
// @Param limit query int false "Page size" default(20)
// @Param cursor query string false "Token from the previous page"
// @Success 200 {object} responses.PageResponse{data=[]team.Team} "Teams"
// @Failure 400 {object} responses.ErrorResponse "Invalid filter or cursor"
// @Router /teams [get]
func (dc *DirectoryController) ListTeams(c *gin.Context) {
	f := TeamFilter{
		Status:     team.Status(c.Query("status")),
		NamePrefix: c.Query("name"),
	}
	if f.Status != "" && !f.Status.Valid() {
		responses.BadRequest(c, "Invalid team status")
		return
	}

	page, err := dc.dir.ListTeams(c.Request.Context(), f, pageFromQuery(c))
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			responses.BadRequest(c, "Invalid cursor")
			return
		}
		responses.SendAppError(c, err)
		return
	}
	responses.SendPage(c, "Teams retrieved successfully", page.Items, page.Next)
}

// ListPlayers godoc
// @Summary List players
// @Description Profiles ordered by first name.
// @Tags Directory
// @Produce json
// @Param role query string false "Role filter" default(player)
// @Param team_id query string false "Team filter"
// @Param limit query int false "Page size" default(20)
// @Param cursor query string false "Token from the previous page"
// @Success 200 {object} responses.PageResponse{data=[]user.Profile} "Players"
// @Failure 400 {object} responses.ErrorResponse "Invalid filter or cursor"
// @Security ApiKeyAuth
// @Router /players [get]
func (dc *DirectoryController) ListPlayers(c *gin.Context) {
	f := PlayerFilter{
		Role:   user.ParseRole(c.DefaultQuery("role", string(user.RolePlayer))),
		TeamID: c.Query("team_id"),
	}
	if f.Role == "all" {
		f.Role = ""
	} else if !f.Role.Valid() {
		responses.BadRequest(c, "Invalid role")
		return
	}

	page, err := dc.dir.ListPlayers(c.Request.Context(), f, pageFromQuery(c))
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			responses.BadRequest(c, "Invalid cursor")
			return
		}
		responses.SendAppError(c, err)
		return
	}
	responses.SendPage(c, "Players retrieved successfully", page.Items, page.Next)
}

// Stats godoc
// @Summary Admin dashboard counters
// @Tags Admin
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=Stats} "Counters"
// @Security ApiKeyAuth
// @Router /admin/stats [get]
func (dc *DirectoryController) Stats(c *gin.Context) {
	stats, err := dc.dir.Stats(c.Request.Context())
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Stats retrieved successfully", stats)
}
