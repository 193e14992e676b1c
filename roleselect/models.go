package roleselect

import (
	"context"
	"database/sql"
	"time"

	"emperror.dev/errors"
	"github.com/jmoiron/sqlx"

	"github.com/guildhub-gg/guildhub/common"
)

// RoleMeta is officer-maintained configuration for one selectable remote role
type RoleMeta struct {
	GuildID     int64    `db:"guild_id" json:"guild_id,string"`
	RoleID      int64    `db:"role_id" json:"role_id,string"`
	Kind        RoleKind `db:"kind" json:"kind"`
	GroupKey    string   `db:"group_key" json:"group_key"`
	Name        string   `db:"name" json:"name"`
	Description string   `db:"description" json:"description"`
	Enabled     bool     `db:"enabled" json:"enabled"`
}

// Selection is one user's chosen role of one kind in one guild
type Selection struct {
	GuildID   int64     `db:"guild_id" json:"guild_id,string"`
	UserID    int64     `db:"user_id" json:"user_id,string"`
	Kind      RoleKind  `db:"kind" json:"kind"`
	RoleID    int64     `db:"role_id" json:"role_id,string"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GetRoleMeta returns the meta row for the role, nil when none is configured
func GetRoleMeta(ctx context.Context, guildID, roleID int64) (*RoleMeta, error) {
	meta := &RoleMeta{}
	err := common.SQLX.GetContext(ctx, meta,
		"SELECT guild_id, role_id, kind, group_key, name, description, enabled FROM role_meta WHERE guild_id = $1 AND role_id = $2",
		guildID, roleID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return meta, nil
}

// ListRoleMeta returns all configured roles for the guild, enabled or not
func ListRoleMeta(ctx context.Context, guildID int64) ([]*RoleMeta, error) {
	result := make([]*RoleMeta, 0)
	err := common.SQLX.SelectContext(ctx, &result,
		"SELECT guild_id, role_id, kind, group_key, name, description, enabled FROM role_meta WHERE guild_id = $1 ORDER BY kind, role_id",
		guildID)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return result, nil
}

// UpsertRoleMeta creates or replaces the meta row, defaulting the group from
// the preset table when none is provided
func UpsertRoleMeta(ctx context.Context, meta *RoleMeta) error {
	if meta.GroupKey == "" {
		if g := MatchPreset(meta.Name); g != nil {
			meta.GroupKey = g.Key
			if meta.Kind == 0 {
				meta.Kind = g.Kind
			}
		}
	}

	if meta.Kind != KindCombat && meta.Kind != KindLogistics {
		return NewSelectionError("role kind could not be determined, set it explicitly or use a recognizable name")
	}

	_, err := common.SQLX.ExecContext(ctx, `
INSERT INTO role_meta (guild_id, role_id, kind, group_key, name, description, enabled)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (guild_id, role_id) DO UPDATE SET
	kind = excluded.kind,
	group_key = excluded.group_key,
	name = excluded.name,
	description = excluded.description,
	enabled = excluded.enabled`,
		meta.GuildID, meta.RoleID, meta.Kind, meta.GroupKey, meta.Name, meta.Description, meta.Enabled)

	return errors.WithStackIf(err)
}

// GetSelection returns the user's selection of the given kind, nil when none
func GetSelection(ctx context.Context, guildID, userID int64, kind RoleKind) (*Selection, error) {
	sel := &Selection{}
	err := common.SQLX.GetContext(ctx, sel,
		"SELECT guild_id, user_id, kind, role_id, updated_at FROM role_selections WHERE guild_id = $1 AND user_id = $2 AND kind = $3",
		guildID, userID, kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return sel, nil
}

// UserSelections returns all of the user's selections in the guild
func UserSelections(ctx context.Context, guildID, userID int64) ([]*Selection, error) {
	result := make([]*Selection, 0, 2)
	err := common.SQLX.SelectContext(ctx, &result,
		"SELECT guild_id, user_id, kind, role_id, updated_at FROM role_selections WHERE guild_id = $1 AND user_id = $2 ORDER BY kind",
		guildID, userID)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return result, nil
}

// replaceSelection atomically swaps the selection row for (guild, user, kind).
// Delete then insert in one transaction, the role id itself is part of what
// changes so an upsert on the unique key would hide the previous value.
func replaceSelection(ctx context.Context, sel *Selection) error {
	tx, err := common.SQLX.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithStackIf(err)
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM role_selections WHERE guild_id = $1 AND user_id = $2 AND kind = $3",
		sel.GuildID, sel.UserID, sel.Kind)
	if err != nil {
		tx.Rollback()
		return errors.WithStackIf(err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO role_selections (guild_id, user_id, kind, role_id, updated_at) VALUES ($1, $2, $3, $4, $5)",
		sel.GuildID, sel.UserID, sel.Kind, sel.RoleID, sel.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return errors.WithStackIf(err)
	}

	return errors.WithStackIf(tx.Commit())
}

func deleteSelection(ctx context.Context, guildID, userID int64, kinds ...RoleKind) error {
	for _, kind := range kinds {
		_, err := common.SQLX.ExecContext(ctx,
			"DELETE FROM role_selections WHERE guild_id = $1 AND user_id = $2 AND kind = $3",
			guildID, userID, kind)
		if err != nil {
			return errors.WithStackIf(err)
		}
	}

	return nil
}

// selectionsForUsers returns selections joined with their group key for the
// given users, used by the badge lookup
type selectionWithGroup struct {
	UserID   int64    `db:"user_id"`
	Kind     RoleKind `db:"kind"`
	GroupKey string   `db:"group_key"`
}

func selectionsForUsers(ctx context.Context, guildID int64, userIDs []int64) ([]*selectionWithGroup, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		"SELECT s.user_id, s.kind, m.group_key FROM role_selections s JOIN role_meta m ON m.guild_id = s.guild_id AND m.role_id = s.role_id WHERE s.guild_id = ? AND s.user_id IN (?) ORDER BY s.user_id, s.kind",
		guildID, userIDs)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	result := make([]*selectionWithGroup, 0)
	err = common.SQLX.SelectContext(ctx, &result, common.SQLX.Rebind(query), args...)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return result, nil
}
