package event

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

type EventController struct {
	repo Repository
	now  func() time.Time
}

func NewEventController(repo Repository) *EventController {
	return &EventController{repo: repo, now: time.Now}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Admins and managers publish a club event.
// @Tags Events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event details"
// @Success 201 {object} responses.SuccessResponse{data=Event} "Event created successfully"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 403 {object} responses.ErrorResponse "Forbidden"
// @Security ApiKeyAuth
// @Router /events [post]
func (ec *EventController) CreateEvent(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}
	if req.RegistrationDeadline != nil && req.RegistrationDeadline.After(req.Date) {
		responses.BadRequest(c, "Registration deadline must not be after the event date")
		return
	}

	now := ec.now()
	e := &Event{
		ID:                   uuid.NewString(),
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		Date:                 req.Date,
		RegistrationDeadline: req.RegistrationDeadline,
		CreatedBy:            userID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := ec.repo.CreateEvent(c.Request.Context(), e); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Event created successfully", e)
}

// ListEvents godoc
// @Summary List events
// @Description Upcoming events soonest first, or all events latest first.
// @Tags Events
// @Produce json
// @Param filter query string false "upcoming or all" default(upcoming)
// @Param limit query int false "Maximum number of events"
// @Success 200 {object} responses.SuccessResponse{data=[]Event} "List of events"
// @Router /events [get]
func (ec *EventController) ListEvents(c *gin.Context) {
	q := Query{}
	if c.DefaultQuery("filter", "upcoming") == "upcoming" {
		now := ec.now()
		q.From = &now
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}

	events, err := ec.repo.ListEvents(c.Request.Context(), q)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Events retrieved successfully", events)
}

// GetEvent godoc
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} responses.SuccessResponse{data=Event} "Event details"
// @Failure 404 {object} responses.ErrorResponse "Event not found"
// @Router /events/{event_id} [get]
func (ec *EventController) GetEvent(c *gin.Context) {
	e, err := ec.repo.GetEvent(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	if e == nil {
		responses.SendError(c, http.StatusNotFound, "Event not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Event retrieved successfully", e)
}
