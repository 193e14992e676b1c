// perms resolves officer authority for a guild, used as the gate in front of
// every mutating officer-only operation.
package perms

import (
	"context"
	"database/sql"

	"emperror.dev/errors"
	"github.com/volatiletech/null/v8"

	"github.com/guildhub-gg/guildhub/common"
)

var logger = common.GetPluginLogger(&Plugin{})

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Permissions",
		SysName:  "perms",
		Category: common.PluginCategoryCore,
	}
}

func RegisterPlugin() {
	common.InitSchemas("perms", DBSchemas...)
	common.RegisterPlugin(&Plugin{})
}

var DBSchemas = []string{`
CREATE TABLE IF NOT EXISTS guild_perm_configs (
	guild_id BIGINT PRIMARY KEY,

	officer_role_id BIGINT,
	fallback_mode TEXT NOT NULL DEFAULT '',
	owner_id BIGINT NOT NULL DEFAULT 0,

	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);
`}

const FallbackModeOwner = "owner"

// GuildConfig drives the permission resolver for one guild
type GuildConfig struct {
	GuildID       int64      `db:"guild_id"`
	OfficerRoleID null.Int64 `db:"officer_role_id"`
	FallbackMode  string     `db:"fallback_mode"`
	OwnerID       int64      `db:"owner_id"`
}

// GetGuildConfig returns the stored config for the guild, a zero value config
// when none is stored (everything denied except nothing, there is no implicit
// superuser).
func GetGuildConfig(ctx context.Context, guildID int64) (*GuildConfig, error) {
	conf := &GuildConfig{}
	err := common.SQLX.GetContext(ctx, conf,
		"SELECT guild_id, officer_role_id, fallback_mode, owner_id FROM guild_perm_configs WHERE guild_id = $1", guildID)
	if err == sql.ErrNoRows {
		return &GuildConfig{GuildID: guildID}, nil
	}
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return conf, nil
}

// SeedOwnerFallback records the guild owner with the owner fallback enabled,
// only when no config is stored yet. This is what hands a fresh guild its
// first officer, an officer-written config is never overwritten.
func SeedOwnerFallback(ctx context.Context, guildID, ownerID int64) error {
	_, err := common.SQLX.ExecContext(ctx, `
INSERT INTO guild_perm_configs (guild_id, fallback_mode, owner_id, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (guild_id) DO NOTHING`,
		guildID, FallbackModeOwner, ownerID)

	return errors.WithStackIf(err)
}

// SetGuildConfig upserts the guild's permission config
func SetGuildConfig(ctx context.Context, conf *GuildConfig) error {
	_, err := common.SQLX.ExecContext(ctx, `
INSERT INTO guild_perm_configs (guild_id, officer_role_id, fallback_mode, owner_id, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (guild_id) DO UPDATE SET
	officer_role_id = excluded.officer_role_id,
	fallback_mode = excluded.fallback_mode,
	owner_id = excluded.owner_id,
	updated_at = now()`,
		conf.GuildID, conf.OfficerRoleID, conf.FallbackMode, conf.OwnerID)

	return errors.WithStackIf(err)
}
