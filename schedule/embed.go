package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x518eef

// RosterCounts is the per-status tally of one session's roster
type RosterCounts struct {
	In    int `json:"in"`
	Maybe int `json:"maybe"`
	Out   int `json:"out"`
}

func CountRoster(roster []*RSVP) RosterCounts {
	c := RosterCounts{}
	for _, v := range roster {
		switch v.Status {
		case StatusIn:
			c.In++
		case StatusMaybe:
			c.Maybe++
		case StatusOut:
			c.Out++
		}
	}

	return c
}

// BuildSessionMessage renders the session and its roster into the channel
// message payload. Pure and deterministic: the same inputs always produce the
// same output, which is what lets the gateway re-render on every button press
// without any locking.
func BuildSessionMessage(s *Session, roster []*RSVP, badges map[int64]string) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	counts := CountRoster(roster)

	startUnix := s.StartsAt.Unix()

	embed := &discordgo.MessageEmbed{
		Title:       s.Title,
		Description: s.Notes,
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Time",
				Value: fmt.Sprintf("<t:%d:F> (<t:%d:R>)", startUnix, startUnix),
			},
			{
				Name:   "Duration",
				Value:  strconv.Itoa(s.DurationMinutes) + " minutes",
				Inline: true,
			},
			{
				Name:   "RSVPs",
				Value:  fmt.Sprintf("In: %d • Maybe: %d • Out: %d", counts.In, counts.Maybe, counts.Out),
				Inline: true,
			},
			rosterField("✅ In", StatusIn, counts.In, roster, badges),
			rosterField("❔ Maybe", StatusMaybe, counts.Maybe, roster, badges),
			rosterField("❌ Out", StatusOut, counts.Out, roster, badges),
		},
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("In (%d)", counts.In),
					Style:    discordgo.SuccessButton,
					CustomID: RSVPCustomID(s.ID, StatusIn),
				},
				discordgo.Button{
					Label:    fmt.Sprintf("Maybe (%d)", counts.Maybe),
					Style:    discordgo.SecondaryButton,
					CustomID: RSVPCustomID(s.ID, StatusMaybe),
				},
				discordgo.Button{
					Label:    fmt.Sprintf("Out (%d)", counts.Out),
					Style:    discordgo.DangerButton,
					CustomID: RSVPCustomID(s.ID, StatusOut),
				},
			},
		},
	}

	return embed, components
}

func rosterField(name string, status Status, count int, roster []*RSVP, badges map[int64]string) *discordgo.MessageEmbedField {
	var b strings.Builder

	for _, v := range roster {
		if v.Status != status {
			continue
		}

		badge := badges[v.UserID]
		if badge == "" {
			badge = "❔"
		}

		b.WriteString(badge)
		b.WriteString(" <@")
		b.WriteString(strconv.FormatInt(v.UserID, 10))
		b.WriteString(">\n")
	}

	value := b.String()
	if value == "" {
		value = "None"
	}

	return &discordgo.MessageEmbedField{
		Name:   name + " (" + strconv.Itoa(count) + ")",
		Value:  value,
		Inline: false,
	}
}
