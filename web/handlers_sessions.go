package web

import (
	"context"
	"net/http"

	"goji.io/pat"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/roleselect"
	"github.com/guildhub-gg/guildhub/schedule"
)

func sessionParam(r *http.Request) int64 {
	return common.ParseInt64(pat.Param(r, "session"))
}

// sessionErrorStatus maps store errors to one consistent status/reason pair
// across all session endpoints
func sessionErrorStatus(err error) (int, string) {
	if err == schedule.ErrSessionNotFound {
		return http.StatusNotFound, ReasonNotFound
	}
	if schedule.IsValidationError(err) {
		return http.StatusBadRequest, ReasonValidation
	}

	return http.StatusInternalServerError, ReasonInternal
}

func writeSessionError(w http.ResponseWriter, err error, action string) {
	status, reason := sessionErrorStatus(err)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("failed ", action)
		detail = "failed " + action
	}

	writeAPIError(w, status, reason, detail)
}

type createSessionBody struct {
	Title           string `json:"title"`
	StartsAt        string `json:"starts_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

type sessionResponse struct {
	Session *schedule.Session      `json:"session"`
	Counts  *schedule.RosterCounts `json:"counts,omitempty"`
	Posted  bool                   `json:"posted"`
	Warning string                 `json:"warning,omitempty"`
}

func handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionBody
	if !decodeBody(w, r, &body) {
		return
	}

	s, err := schedule.CreateSession(r.Context(), guildParam(r), body.Title, body.StartsAt, body.DurationMinutes, body.Notes)
	if err != nil {
		writeSessionError(w, err, "creating session")
		return
	}

	// a fresh session has an empty roster
	posted, warning := schedule.PostSessionMessage(r.Context(), s, nil, nil)

	writeJSON(w, sessionResponse{Session: s, Posted: posted, Warning: warning})
}

func handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var patch schedule.SessionPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	s, err := schedule.UpdateSession(r.Context(), guildParam(r), sessionParam(r), &patch)
	if err != nil {
		writeSessionError(w, err, "updating session")
		return
	}

	warning := refreshSessionMessage(r.Context(), s)

	writeJSON(w, sessionResponse{Session: s, Posted: s.Posted(), Warning: warning})
}

func handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s, err := schedule.DeleteSession(r.Context(), guildParam(r), sessionParam(r))
	if err != nil {
		writeSessionError(w, err, "deleting session")
		return
	}

	warning := schedule.RemoveSessionMessage(s)

	writeJSON(w, map[string]interface{}{"deleted": true, "warning": warning})
}

func handleListSessions(w http.ResponseWriter, r *http.Request) {
	guildID := guildParam(r)
	if guildID == 0 {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "invalid guild id")
		return
	}

	sessions, err := schedule.GuildSessions(r.Context(), guildID)
	if err != nil {
		logger.WithError(err).Error("failed listing sessions")
		writeAPIError(w, http.StatusInternalServerError, ReasonInternal, "failed listing sessions")
		return
	}

	out := make([]*sessionResponse, len(sessions))
	for i, s := range sessions {
		roster, err := schedule.Roster(r.Context(), s.ID)
		if err != nil {
			logger.WithError(err).Error("failed reading roster")
			writeAPIError(w, http.StatusInternalServerError, ReasonInternal, "failed listing sessions")
			return
		}

		counts := schedule.CountRoster(roster)
		out[i] = &sessionResponse{Session: s, Counts: &counts, Posted: s.Posted()}
	}

	writeJSON(w, map[string]interface{}{"sessions": out})
}

// refreshSessionMessage re-renders the posted channel message after a session
// edit, best-effort
func refreshSessionMessage(ctx context.Context, s *schedule.Session) string {
	if !s.Posted() {
		return ""
	}

	roster, err := schedule.Roster(ctx, s.ID)
	if err != nil {
		logger.WithError(err).Error("failed reading roster for message refresh")
		return "failed re-rendering the channel message"
	}

	userIDs := make([]int64, len(roster))
	for i, v := range roster {
		userIDs[i] = v.UserID
	}

	badges, err := roleselect.BadgeMap(ctx, s.GuildID, userIDs)
	if err != nil {
		logger.WithError(err).Warn("failed resolving roster badges for message refresh")
		badges = nil
	}

	return schedule.EditSessionMessage(s, roster, badges)
}
