package web

import (
	"net/http"

	"github.com/volatiletech/null/v8"

	"github.com/guildhub-gg/guildhub/perms"
)

type permConfigBody struct {
	OfficerRoleID int64  `json:"officer_role_id,string"`
	FallbackMode  string `json:"fallback_mode"`
	OwnerID       int64  `json:"owner_id,string"`
}

// handleSetPermConfig stores the guild's officer role and fallback settings.
// Officer gated, the owner fallback is what bootstraps a fresh guild into
// being able to call this at all.
func handleSetPermConfig(w http.ResponseWriter, r *http.Request) {
	var body permConfigBody
	if !decodeBody(w, r, &body) {
		return
	}

	if body.FallbackMode != "" && body.FallbackMode != perms.FallbackModeOwner {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "fallback_mode must be empty or owner")
		return
	}

	conf := &perms.GuildConfig{
		GuildID:      guildParam(r),
		FallbackMode: body.FallbackMode,
		OwnerID:      body.OwnerID,
	}
	if body.OfficerRoleID != 0 {
		conf.OfficerRoleID = null.Int64From(body.OfficerRoleID)
	}

	if err := perms.SetGuildConfig(r.Context(), conf); err != nil {
		logger.WithError(err).Error("failed storing guild perm config")
		writeAPIError(w, http.StatusInternalServerError, ReasonInternal, "failed storing permission config")
		return
	}

	writeJSON(w, map[string]interface{}{"saved": true})
}
