package roleselect

import (
	"context"
	"strconv"
	"time"

	"github.com/guildhub-gg/guildhub/common"
)

// SyncState is the outcome of mirroring a selection onto the remote guild
type SyncState int

const (
	// SyncOK, all remote calls succeeded
	SyncOK SyncState = iota
	// SyncPartial, the new role was added but the old one may still be present
	SyncPartial
	// SyncFailed, nothing was mirrored
	SyncFailed
)

// SyncResult is returned alongside every successful local write so callers
// can't accidentally ignore a mirroring failure
type SyncResult struct {
	State   SyncState `json:"state"`
	Warning string    `json:"warning,omitempty"`
}

var syncOK = SyncResult{State: SyncOK}

// SelectRole picks the role for the user, replacing any existing selection of
// the same kind. The local write is the source of truth, remote mirroring is
// best-effort and reported through the SyncResult.
func SelectRole(ctx context.Context, guildID, userID, roleID int64) (*Selection, SyncResult, error) {
	meta, err := GetRoleMeta(ctx, guildID, roleID)
	if err != nil {
		return nil, syncOK, err
	}
	if meta == nil {
		return nil, syncOK, ErrRoleNotConfigured
	}
	if !meta.Enabled {
		return nil, syncOK, ErrRoleDisabled
	}

	if err := checkRoleInCatalog(guildID, roleID); err != nil {
		return nil, syncOK, err
	}

	if meta.Kind == KindLogistics {
		combat, err := GetSelection(ctx, guildID, userID, KindCombat)
		if err != nil {
			return nil, syncOK, err
		}
		if combat == nil {
			return nil, syncOK, ErrCombatRequired
		}
	}

	prev, err := GetSelection(ctx, guildID, userID, meta.Kind)
	if err != nil {
		return nil, syncOK, err
	}

	sel := &Selection{
		GuildID:   guildID,
		UserID:    userID,
		Kind:      meta.Kind,
		RoleID:    roleID,
		UpdatedAt: time.Now().UTC(),
	}

	if err := replaceSelection(ctx, sel); err != nil {
		return nil, syncOK, err
	}

	prevRole := int64(0)
	if prev != nil {
		prevRole = prev.RoleID
	}

	return sel, mirrorSelection(guildID, userID, prevRole, roleID), nil
}

// ResetSelection removes the user's selection of the given kind, officer
// operation. Resetting combat also resets a dependent logistics selection so
// the combat-before-logistics invariant never stands violated.
func ResetSelection(ctx context.Context, guildID, userID int64, kind RoleKind) (SyncResult, error) {
	kinds := []RoleKind{kind}
	if kind == KindCombat {
		kinds = append(kinds, KindLogistics)
	}

	removedRoles := make([]int64, 0, 2)
	for _, k := range kinds {
		sel, err := GetSelection(ctx, guildID, userID, k)
		if err != nil {
			return syncOK, err
		}
		if sel != nil {
			removedRoles = append(removedRoles, sel.RoleID)
		}
	}

	if err := deleteSelection(ctx, guildID, userID, kinds...); err != nil {
		return syncOK, err
	}

	return mirrorRemoval(guildID, userID, removedRoles), nil
}

func mirrorSelection(guildID, userID, oldRole, newRole int64) SyncResult {
	if common.BotSession == nil {
		return SyncResult{State: SyncFailed, Warning: "no bot credential configured, remote roles were not updated"}
	}

	guildStr := strconv.FormatInt(guildID, 10)
	userStr := strconv.FormatInt(userID, 10)

	removeFailed := false
	if oldRole != 0 && oldRole != newRole {
		err := common.BotSession.GuildMemberRoleRemove(guildStr, userStr, strconv.FormatInt(oldRole, 10))
		if err != nil {
			logger.WithError(err).WithField("guild", guildID).Warn("failed removing previous role from remote member")
			removeFailed = true
		}
	}

	err := common.BotSession.GuildMemberRoleAdd(guildStr, userStr, strconv.FormatInt(newRole, 10))
	if err != nil {
		logger.WithError(err).WithField("guild", guildID).Warn("failed adding role to remote member")
		return SyncResult{State: SyncFailed, Warning: "failed updating roles on the remote guild"}
	}

	if removeFailed {
		return SyncResult{State: SyncPartial, Warning: "new role added but the previous one may still be present on the remote guild"}
	}

	return syncOK
}

func mirrorRemoval(guildID, userID int64, roles []int64) SyncResult {
	if len(roles) == 0 {
		return syncOK
	}

	if common.BotSession == nil {
		return SyncResult{State: SyncFailed, Warning: "no bot credential configured, remote roles were not updated"}
	}

	guildStr := strconv.FormatInt(guildID, 10)
	userStr := strconv.FormatInt(userID, 10)

	failed := 0
	for _, r := range roles {
		err := common.BotSession.GuildMemberRoleRemove(guildStr, userStr, strconv.FormatInt(r, 10))
		if err != nil {
			logger.WithError(err).WithField("guild", guildID).Warn("failed removing role from remote member")
			failed++
		}
	}

	switch {
	case failed == len(roles):
		return SyncResult{State: SyncFailed, Warning: "failed removing roles on the remote guild"}
	case failed > 0:
		return SyncResult{State: SyncPartial, Warning: "some roles may still be present on the remote guild"}
	}

	return syncOK
}

// BadgeMap resolves badge glyphs for the given users, combat group first,
// logistics as fallback, BadgeUnknown when nothing maps
func BadgeMap(ctx context.Context, guildID int64, userIDs []int64) (map[int64]string, error) {
	result := make(map[int64]string, len(userIDs))
	for _, v := range userIDs {
		result[v] = BadgeUnknown
	}

	selections, err := selectionsForUsers(ctx, guildID, userIDs)
	if err != nil {
		return nil, err
	}

	for _, s := range selections {
		if result[s.UserID] != BadgeUnknown && s.Kind == KindLogistics {
			// combat badge already placed, keep it
			continue
		}

		if g := GroupByKey(s.GroupKey); g != nil {
			result[s.UserID] = g.Badge
		}
	}

	return result, nil
}
