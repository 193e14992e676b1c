package web

import (
	"net/http"

	"github.com/guildhub-gg/guildhub/perms"
	"github.com/guildhub-gg/guildhub/roleselect"
)

func handlePermissions(w http.ResponseWriter, r *http.Request) {
	guildID := guildParam(r)
	if guildID == 0 {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "invalid guild id")
		return
	}

	userID := CurrentUserID(r)

	isOfficer := false
	if userID != 0 {
		isOfficer = perms.IsOfficer(r.Context(), guildID, userID)
	}

	rolesEnabled := false
	metas, err := roleselect.ListRoleMeta(r.Context(), guildID)
	if err != nil {
		logger.WithError(err).Error("failed reading role catalog for permission summary")
	} else {
		for _, m := range metas {
			if m.Enabled {
				rolesEnabled = true
				break
			}
		}
	}

	writeJSON(w, map[string]interface{}{
		"is_authed":     userID != 0,
		"is_officer":    isOfficer,
		"roles_enabled": rolesEnabled,
	})
}

func handleListRoles(w http.ResponseWriter, r *http.Request) {
	guildID := guildParam(r)
	if guildID == 0 {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "invalid guild id")
		return
	}

	metas, err := roleselect.ListRoleMeta(r.Context(), guildID)
	if err != nil {
		logger.WithError(err).Error("failed listing role catalog")
		writeAPIError(w, http.StatusInternalServerError, ReasonInternal, "failed listing roles")
		return
	}

	writeJSON(w, map[string]interface{}{
		"roles":  metas,
		"groups": roleselect.RoleGroups,
	})
}

type selectRoleBody struct {
	RoleID int64 `json:"role_id,string"`
}

type selectionResponse struct {
	Selection *roleselect.Selection `json:"selection,omitempty"`
	Sync      roleselect.SyncResult `json:"sync"`
}

func handleSelectRole(w http.ResponseWriter, r *http.Request) {
	guildID := guildParam(r)
	if guildID == 0 {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "invalid guild id")
		return
	}

	var body selectRoleBody
	if !decodeBody(w, r, &body) {
		return
	}

	sel, sync, err := roleselect.SelectRole(r.Context(), guildID, CurrentUserID(r), body.RoleID)
	if err != nil {
		if roleselect.IsSelectionError(err) {
			writeAPIError(w, http.StatusBadRequest, ReasonValidation, err.Error())
			return
		}

		logger.WithError(err).Error("failed storing role selection")
		writeAPIError(w, http.StatusInternalServerError, ReasonInternal, "failed storing selection")
		return
	}

	writeJSON(w, selectionResponse{Selection: sel, Sync: sync})
}

type configureRoleBody struct {
	RoleID      int64  `json:"role_id,string"`
	Kind        string `json:"kind"`
	GroupKey    string `json:"group_key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// handleConfigureRole creates or updates the meta row that makes a remote
// role selectable. Kind and group may be left empty to be inferred from the
// name presets.
func handleConfigureRole(w http.ResponseWriter, r *http.Request) {
	var body configureRoleBody
	if !decodeBody(w, r, &body) {
		return
	}

	if body.RoleID == 0 {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "need a role id")
		return
	}

	kind := roleselect.RoleKind(0)
	if body.Kind != "" {
		parsed, ok := roleselect.ParseKind(body.Kind)
		if !ok {
			writeAPIError(w, http.StatusBadRequest, ReasonValidation, "kind must be combat or logistics")
			return
		}
		kind = parsed
	}

	meta := &roleselect.RoleMeta{
		GuildID:     guildParam(r),
		RoleID:      body.RoleID,
		Kind:        kind,
		GroupKey:    body.GroupKey,
		Name:        body.Name,
		Description: body.Description,
		Enabled:     body.Enabled,
	}

	if err := roleselect.UpsertRoleMeta(r.Context(), meta); err != nil {
		logger.WithError(err).Error("failed storing role meta")
		writeAPIError(w, http.StatusInternalServerError, ReasonInternal, "failed storing role configuration")
		return
	}

	writeJSON(w, map[string]interface{}{"role": meta})
}

type resetRoleBody struct {
	UserID int64  `json:"user_id,string"`
	Kind   string `json:"kind"`
}

func handleResetRole(w http.ResponseWriter, r *http.Request) {
	var body resetRoleBody
	if !decodeBody(w, r, &body) {
		return
	}

	kind, ok := roleselect.ParseKind(body.Kind)
	if !ok || body.UserID == 0 {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "need a user id and a kind of combat or logistics")
		return
	}

	sync, err := roleselect.ResetSelection(r.Context(), guildParam(r), body.UserID, kind)
	if err != nil {
		logger.WithError(err).Error("failed resetting role selection")
		writeAPIError(w, http.StatusInternalServerError, ReasonInternal, "failed resetting selection")
		return
	}

	writeJSON(w, selectionResponse{Sync: sync})
}

type assignRoleBody struct {
	UserID int64 `json:"user_id,string"`
	RoleID int64 `json:"role_id,string"`
}

// handleAssignRole lets an officer place a selection on behalf of a member,
// same rules as self-selection
func handleAssignRole(w http.ResponseWriter, r *http.Request) {
	var body assignRoleBody
	if !decodeBody(w, r, &body) {
		return
	}

	if body.UserID == 0 || body.RoleID == 0 {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "need a user id and a role id")
		return
	}

	sel, sync, err := roleselect.SelectRole(r.Context(), guildParam(r), body.UserID, body.RoleID)
	if err != nil {
		if roleselect.IsSelectionError(err) {
			writeAPIError(w, http.StatusBadRequest, ReasonValidation, err.Error())
			return
		}

		logger.WithError(err).Error("failed storing role assignment")
		writeAPIError(w, http.StatusInternalServerError, ReasonInternal, "failed storing assignment")
		return
	}

	writeJSON(w, selectionResponse{Selection: sel, Sync: sync})
}
