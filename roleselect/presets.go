package roleselect

import (
	"strings"
)

// RoleGroup maps a group key to a badge glyph and a coarse classification.
// Static lookup table, no state.
type RoleGroup struct {
	Key   string
	Kind  RoleKind
	Badge string
}

var RoleGroups = []*RoleGroup{
	{Key: "strength", Kind: KindCombat, Badge: "🗡️"},
	{Key: "marksman", Kind: KindCombat, Badge: "🏹"},
	{Key: "arcane", Kind: KindCombat, Badge: "🔮"},
	{Key: "warden", Kind: KindCombat, Badge: "🛡️"},
	{Key: "architect", Kind: KindLogistics, Badge: "🏗️"},
	{Key: "quartermaster", Kind: KindLogistics, Badge: "📦"},
	{Key: "scout", Kind: KindLogistics, Badge: "🗺️"},
	{Key: "artisan", Kind: KindLogistics, Badge: "⚒️"},
}

// BadgeUnknown is shown for members with no selection or no group mapping
const BadgeUnknown = "❔"

func GroupByKey(key string) *RoleGroup {
	for _, v := range RoleGroups {
		if v.Key == key {
			return v
		}
	}

	return nil
}

// rolePreset is one (substring pattern, group) pair, evaluated in order
// against a role's display name
type rolePreset struct {
	pattern string
	group   string
}

var rolePresets = []rolePreset{
	{"warrior", "strength"},
	{"berserk", "strength"},
	{"knight", "warden"},
	{"guardian", "warden"},
	{"tank", "warden"},
	{"archer", "marksman"},
	{"ranger", "marksman"},
	{"sniper", "marksman"},
	{"mage", "arcane"},
	{"wizard", "arcane"},
	{"sorcer", "arcane"},
	{"builder", "architect"},
	{"architect", "architect"},
	{"engineer", "architect"},
	{"supply", "quartermaster"},
	{"quartermaster", "quartermaster"},
	{"logisti", "quartermaster"},
	{"scout", "scout"},
	{"cartograph", "scout"},
	{"crafter", "artisan"},
	{"smith", "artisan"},
	{"artisan", "artisan"},
}

// MatchPreset classifies a role by display name, returning the first matching
// group or nil. Pure function, used to default new RoleMeta rows.
func MatchPreset(roleName string) *RoleGroup {
	lowered := strings.ToLower(roleName)
	for _, p := range rolePresets {
		if strings.Contains(lowered, p.pattern) {
			return GroupByKey(p.group)
		}
	}

	return nil
}
