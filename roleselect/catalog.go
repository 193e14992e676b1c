package roleselect

import (
	"strconv"
	"time"

	"emperror.dev/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/karlseguin/ccache"

	"github.com/guildhub-gg/guildhub/common"
)

var guildRolesCache = ccache.New(ccache.Configure().MaxSize(1000).ItemsToPrune(25))

// GuildRoles returns the live role catalog of the guild, cached for a minute.
// Returns nil without error when no bot credential is configured.
func GuildRoles(guildID int64) ([]*discordgo.Role, error) {
	if common.BotSession == nil {
		return nil, nil
	}

	item, err := guildRolesCache.Fetch("guild_roles:"+strconv.FormatInt(guildID, 10), time.Minute, func() (interface{}, error) {
		roles, err := common.BotSession.GuildRoles(strconv.FormatInt(guildID, 10))
		if err != nil {
			return nil, errors.WithStackIf(err)
		}

		return roles, nil
	})
	if err != nil {
		return nil, err
	}

	return item.Value().([]*discordgo.Role), nil
}

// checkRoleInCatalog validates the role against the live catalog. When the
// catalog is unreachable the local write is not blocked, the RoleMeta row is
// the fallback source of truth.
func checkRoleInCatalog(guildID, roleID int64) error {
	roles, err := GuildRoles(guildID)
	if err != nil {
		logger.WithError(err).WithField("guild", guildID).Warn("failed fetching guild role catalog, skipping live validation")
		return nil
	}

	if roles == nil {
		return nil
	}

	idStr := strconv.FormatInt(roleID, 10)
	for _, v := range roles {
		if v.ID == idStr {
			if v.Managed {
				return ErrRoleManaged
			}
			return nil
		}
	}

	return ErrRoleNotInGuild
}
