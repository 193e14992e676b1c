package roleselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPreset(t *testing.T) {
	cases := []struct {
		name      string
		roleName  string
		wantGroup string
		wantKind  RoleKind
	}{
		{"exact", "warrior", "strength", KindCombat},
		{"case insensitive", "WARRIOR", "strength", KindCombat},
		{"substring", "Head Quartermaster", "quartermaster", KindLogistics},
		{"first match wins", "warrior scout", "strength", KindCombat},
		{"prefix pattern", "Sorceress", "arcane", KindCombat},
		{"logistics", "Master Builder", "architect", KindLogistics},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := MatchPreset(c.roleName)
			if assert.NotNil(t, g) {
				assert.Equal(t, c.wantGroup, g.Key)
				assert.Equal(t, c.wantKind, g.Kind)
			}
		})
	}
}

func TestMatchPresetNoMatch(t *testing.T) {
	assert.Nil(t, MatchPreset("Moderator"))
	assert.Nil(t, MatchPreset(""))
}

func TestGroupByKey(t *testing.T) {
	g := GroupByKey("strength")
	if assert.NotNil(t, g) {
		assert.Equal(t, KindCombat, g.Kind)
		assert.NotEmpty(t, g.Badge)
	}

	assert.Nil(t, GroupByKey("nonexistent"))
}

func TestRoleGroupsHaveDistinctKeysAndBadges(t *testing.T) {
	seenKeys := make(map[string]bool)
	for _, g := range RoleGroups {
		assert.False(t, seenKeys[g.Key], "duplicate group key %q", g.Key)
		seenKeys[g.Key] = true
		assert.NotEmpty(t, g.Badge)
		assert.Contains(t, []RoleKind{KindCombat, KindLogistics}, g.Kind)
	}
}
