package schedule

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/guildhub-gg/guildhub/common"
)

// Posting and editing the channel message is best-effort: the local session
// row is the source of truth and is never blocked or rolled back by the
// remote platform's availability. All functions here return a warning string
// instead of an error, empty on success.

// PostSessionMessage posts the session to the guild's bound signup channel
// and records the message identifiers. No-op with a warning when no channel
// is bound or no bot credential is configured.
func PostSessionMessage(ctx context.Context, s *Session, roster []*RSVP, badges map[int64]string) (posted bool, warning string) {
	if common.BotSession == nil {
		return false, "no bot credential configured, session not posted to the channel"
	}

	channelID, err := GetSignupChannel(ctx, s.GuildID)
	if err != nil {
		logger.WithError(err).WithField("guild", s.GuildID).Error("failed reading signup channel binding")
		return false, "failed reading the signup channel binding"
	}
	if channelID == 0 {
		return false, "no signup channel bound, run the setup command first"
	}

	embed, components := BuildSessionMessage(s, roster, badges)

	msg, err := common.BotSession.ChannelMessageSendComplex(strconv.FormatInt(channelID, 10), &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		logger.WithError(err).WithField("guild", s.GuildID).Warn("failed posting session message")
		return false, "failed posting the session message to the channel"
	}

	set, err := MarkPosted(ctx, s.ID, channelID, common.MustParseInt(msg.ID))
	if err != nil {
		logger.WithError(err).WithField("guild", s.GuildID).Error("failed recording posted message ids")
		return false, "posted but failed recording the message identifiers"
	}
	if !set {
		// raced with another post, the first one won and its ids stand
		return true, ""
	}

	s.ChannelID.SetValid(channelID)
	s.MessageID.SetValid(common.MustParseInt(msg.ID))

	return true, ""
}

// EditSessionMessage re-renders an already posted session message in place
func EditSessionMessage(s *Session, roster []*RSVP, badges map[int64]string) (warning string) {
	if !s.Posted() {
		return ""
	}

	if common.BotSession == nil {
		return "no bot credential configured, channel message not updated"
	}

	embed, components := BuildSessionMessage(s, roster, badges)

	_, err := common.BotSession.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    strconv.FormatInt(s.ChannelID.Int64, 10),
		ID:         strconv.FormatInt(s.MessageID.Int64, 10),
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	if err != nil {
		logger.WithError(err).WithField("guild", s.GuildID).Warn("failed editing session message")
		return "failed updating the channel message"
	}

	return ""
}

// RemoveSessionMessage deletes the posted channel message, best-effort
func RemoveSessionMessage(s *Session) (warning string) {
	if !s.Posted() || common.BotSession == nil {
		return ""
	}

	err := common.BotSession.ChannelMessageDelete(
		strconv.FormatInt(s.ChannelID.Int64, 10), strconv.FormatInt(s.MessageID.Int64, 10))
	if err != nil {
		logger.WithError(err).WithField("guild", s.GuildID).Warn("failed deleting session message")
		return "failed deleting the channel message"
	}

	return ""
}
