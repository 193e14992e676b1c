package interactions

import (
	"context"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/guildhub-gg/guildhub/roleselect"
	"github.com/guildhub-gg/guildhub/schedule"
)

// handleComponent handles button presses. Anything that goes wrong past
// signature verification ends in a silent ack: the protocol has no concept of
// "this button press failed" and the remote platform retries unanswered
// interactions.
func (p *Plugin) handleComponent(r *http.Request, w http.ResponseWriter, interaction *discordgo.Interaction) {
	ctx := r.Context()

	sessionID, status, ok := schedule.ParseRSVPCustomID(interaction.MessageComponentData().CustomID)
	if !ok {
		silentAck(w)
		return
	}

	userID := interactionUserID(interaction)
	if userID == 0 {
		silentAck(w)
		return
	}

	session, err := schedule.GetSessionByID(ctx, sessionID)
	if err != nil {
		logger.WithError(err).WithField("session", sessionID).Error("failed reading session for rsvp press")
		silentAck(w)
		return
	}
	if session == nil {
		// stale button on a deleted session
		silentAck(w)
		return
	}

	existing, err := schedule.GetRSVP(ctx, sessionID, userID)
	if err != nil {
		logger.WithError(err).WithField("session", sessionID).Error("failed reading stored rsvp")
		silentAck(w)
		return
	}

	if existing != nil && existing.Status == status {
		// unchanged, skip the write. Best-effort optimization, two racing
		// requests past this check still end in a safe keyed replace.
		silentAck(w)
		return
	}

	if err := schedule.SetRSVP(ctx, sessionID, userID, status); err != nil {
		logger.WithError(err).WithField("session", sessionID).Error("failed storing rsvp")
		silentAck(w)
		return
	}
	metricsRSVPWrites.Inc()

	roster, err := schedule.Roster(ctx, sessionID)
	if err != nil {
		logger.WithError(err).WithField("session", sessionID).Error("failed reading roster")
		silentAck(w)
		return
	}

	embed, components := schedule.BuildSessionMessage(session, roster, p.rosterBadges(ctx, session.GuildID, roster))

	writeResponse(w, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

// rosterBadges is best-effort, a failed lookup renders neutral glyphs instead
// of failing the press
func (p *Plugin) rosterBadges(ctx context.Context, guildID int64, roster []*schedule.RSVP) map[int64]string {
	userIDs := make([]int64, len(roster))
	for i, v := range roster {
		userIDs[i] = v.UserID
	}

	badges, err := roleselect.BadgeMap(ctx, guildID, userIDs)
	if err != nil {
		logger.WithError(err).WithField("guild", guildID).Warn("failed resolving roster badges")
		return nil
	}

	return badges
}
