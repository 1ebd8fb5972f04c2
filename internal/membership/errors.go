package membership

import "github.com/DhavalSuthar-24/clubhub/internal/apperr"

var (
	ErrRequestNotFound     = apperr.NotFound("team request")
	ErrTeamNotFound        = apperr.NotFound("team")
	ErrPlayerNotFound      = apperr.NotFound("player")
	ErrDuplicatePending    = apperr.Precondition("a pending request for this player and team already exists")
	ErrAlreadyMember       = apperr.Precondition("player is already a member of this team")
	ErrTeamNotApproved     = apperr.Precondition("team is not open for requests until it is approved")
	ErrTeamFull            = apperr.Precondition("team has reached its maximum player capacity")
	ErrPlayerOnAnotherTeam = apperr.Precondition("player already belongs to another team")
	ErrRequestRejected     = apperr.Precondition("request has already been rejected")
	ErrRequestApproved     = apperr.Precondition("request has already been approved")
	ErrNotTeamManager      = apperr.New(apperr.KindForbidden, "only the team's manager can manage this team")
)
