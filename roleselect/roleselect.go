// roleselect implements self-assignable combat/logistics roles: members pick
// at most one role of each kind, logistics is gated behind a combat pick, and
// picks are mirrored best-effort onto the live guild member.
package roleselect

import (
	"fmt"

	"github.com/guildhub-gg/guildhub/common"
)

var logger = common.GetPluginLogger(&Plugin{})

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "RoleSelect",
		SysName:  "roleselect",
		Category: common.PluginCategoryMisc,
	}
}

func RegisterPlugin() {
	common.InitSchemas("roleselect", DBSchemas...)
	common.RegisterPlugin(&Plugin{})
}

var DBSchemas = []string{`
CREATE TABLE IF NOT EXISTS role_meta (
	guild_id BIGINT NOT NULL,
	role_id BIGINT NOT NULL,

	kind SMALLINT NOT NULL,
	group_key TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	enabled BOOLEAN NOT NULL DEFAULT true,

	PRIMARY KEY(guild_id, role_id)
);
`, `
CREATE TABLE IF NOT EXISTS role_selections (
	guild_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	kind SMALLINT NOT NULL,

	role_id BIGINT NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL,

	PRIMARY KEY(guild_id, user_id, kind)
);
`}

// RoleKind classifies a selectable role as combat or logistics
type RoleKind int16

const (
	KindCombat    RoleKind = 1
	KindLogistics RoleKind = 2
)

func (k RoleKind) String() string {
	switch k {
	case KindCombat:
		return "combat"
	case KindLogistics:
		return "logistics"
	}

	return "unknown"
}

// ParseKind maps the wire form back to a RoleKind
func ParseKind(s string) (RoleKind, bool) {
	switch s {
	case "combat":
		return KindCombat, true
	case "logistics":
		return KindLogistics, true
	}

	return 0, false
}

// SelectionError is a user-facing precondition or validation failure,
// distinguishable from internal errors
type SelectionError string

func (s SelectionError) Error() string {
	return string(s)
}

func NewSelectionError(format string, args ...interface{}) error {
	return SelectionError(fmt.Sprintf(format, args...))
}

var (
	ErrCombatRequired    = SelectionError("choose a combat role first")
	ErrRoleNotConfigured = SelectionError("role is not configured for selection")
	ErrRoleDisabled      = SelectionError("role is disabled")
	ErrRoleManaged       = SelectionError("role is managed by the platform and can't be selected")
	ErrRoleNotInGuild    = SelectionError("role does not exist in this guild")
)

func IsSelectionError(err error) bool {
	switch err.(type) {
	case SelectionError, *SelectionError:
		return true
	default:
		return false
	}
}
