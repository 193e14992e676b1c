package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	return &Session{
		ID:              7,
		GuildID:         1,
		Title:           "Boss Run",
		StartsAt:        time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		DurationMinutes: 90,
		Notes:           "bring potions",
	}
}

func testRoster() []*RSVP {
	base := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	return []*RSVP{
		{SessionID: 7, UserID: 10, Status: StatusIn, UpdatedAt: base},
		{SessionID: 7, UserID: 11, Status: StatusIn, UpdatedAt: base.Add(time.Minute)},
		{SessionID: 7, UserID: 12, Status: StatusMaybe, UpdatedAt: base.Add(2 * time.Minute)},
		{SessionID: 7, UserID: 13, Status: StatusOut, UpdatedAt: base.Add(3 * time.Minute)},
	}
}

func TestBuildSessionMessageDeterministic(t *testing.T) {
	badges := map[int64]string{10: "🗡️", 11: "🛡️"}

	embedA, componentsA := BuildSessionMessage(testSession(), testRoster(), badges)
	embedB, componentsB := BuildSessionMessage(testSession(), testRoster(), badges)

	serializedA, err := json.Marshal(embedA)
	require.NoError(t, err)
	serializedB, err := json.Marshal(embedB)
	require.NoError(t, err)
	assert.Equal(t, string(serializedA), string(serializedB), "embed must be byte identical across calls")

	serializedA, err = json.Marshal(componentsA)
	require.NoError(t, err)
	serializedB, err = json.Marshal(componentsB)
	require.NoError(t, err)
	assert.Equal(t, string(serializedA), string(serializedB), "components must be byte identical across calls")
}

func TestBuildSessionMessageCounts(t *testing.T) {
	embed, components := BuildSessionMessage(testSession(), testRoster(), nil)

	require.Len(t, embed.Fields, 6)
	assert.Equal(t, "In: 2 • Maybe: 1 • Out: 1", embed.Fields[2].Value)
	assert.Equal(t, "✅ In (2)", embed.Fields[3].Name)
	assert.Equal(t, "❔ Maybe (1)", embed.Fields[4].Name)
	assert.Equal(t, "❌ Out (1)", embed.Fields[5].Name)

	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 3)

	assert.Equal(t, "In (2)", row.Components[0].(discordgo.Button).Label)
	assert.Equal(t, "rsvp:7:in", row.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, "Maybe (1)", row.Components[1].(discordgo.Button).Label)
	assert.Equal(t, "Out (1)", row.Components[2].(discordgo.Button).Label)
}

func TestBuildSessionMessageEmptyRoster(t *testing.T) {
	embed, _ := BuildSessionMessage(testSession(), nil, nil)

	assert.Equal(t, "In: 0 • Maybe: 0 • Out: 0", embed.Fields[2].Value)
	assert.Equal(t, "None", embed.Fields[3].Value)
	assert.Equal(t, "None", embed.Fields[4].Value)
	assert.Equal(t, "None", embed.Fields[5].Value)
}

func TestBuildSessionMessageBadges(t *testing.T) {
	badges := map[int64]string{10: "🗡️"}
	embed, _ := BuildSessionMessage(testSession(), testRoster(), badges)

	assert.Contains(t, embed.Fields[3].Value, "🗡️ <@10>")
	// no badge known for 11, neutral glyph
	assert.Contains(t, embed.Fields[3].Value, "❔ <@11>")
}

func TestBuildSessionMessageTimeMarkup(t *testing.T) {
	embed, _ := BuildSessionMessage(testSession(), nil, nil)

	// 2025-06-01T20:00:00Z
	assert.Equal(t, "<t:1748808000:F> (<t:1748808000:R>)", embed.Fields[0].Value)
}

func TestCountRoster(t *testing.T) {
	counts := CountRoster(testRoster())
	assert.Equal(t, RosterCounts{In: 2, Maybe: 1, Out: 1}, counts)

	assert.Equal(t, RosterCounts{}, CountRoster(nil))
}

func TestRSVPCustomIDRoundTrip(t *testing.T) {
	id := RSVPCustomID(42, StatusMaybe)
	assert.Equal(t, "rsvp:42:maybe", id)

	sessionID, status, ok := ParseRSVPCustomID(id)
	assert.True(t, ok)
	assert.Equal(t, int64(42), sessionID)
	assert.Equal(t, StatusMaybe, status)
}

func TestParseRSVPCustomIDMalformed(t *testing.T) {
	cases := []string{
		"",
		"rsvp",
		"rsvp:42",
		"rsvp:42:maybe:extra",
		"rsvp:notanumber:in",
		"rsvp:-1:in",
		"rsvp:0:in",
		"rsvp:42:sometimes",
		"menu:42:in",
	}

	for _, c := range cases {
		_, _, ok := ParseRSVPCustomID(c)
		assert.False(t, ok, "expected %q to be rejected", c)
	}
}
