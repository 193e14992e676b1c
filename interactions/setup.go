package interactions

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/perms"
	"github.com/guildhub-gg/guildhub/schedule"
)

// handleSetupCommand binds the invoking channel as the guild's signup
// channel. The deferred ack goes out immediately so the remote platform does
// not time the interaction out, the write continues in the background.
func (p *Plugin) handleSetupCommand(ctx context.Context, w http.ResponseWriter, interaction *discordgo.Interaction) {
	guildID := parseSnowflake(interaction.GuildID)
	channelID := parseSnowflake(interaction.ChannelID)
	if guildID == 0 || channelID == 0 {
		silentAck(w)
		return
	}

	writeResponse(w, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})

	// detached from the request context, the response is already on the wire
	go p.finishSetup(interaction, guildID, channelID)
}

func (p *Plugin) finishSetup(interaction *discordgo.Interaction, guildID, channelID int64) {
	content := "This channel will now receive session signup messages."

	err := schedule.SetSignupChannel(context.Background(), guildID, channelID)
	if err != nil {
		logger.WithError(err).WithField("guild", guildID).Error("failed storing signup channel binding")
		content = "Something went wrong binding this channel, try again later."
	}

	p.seedOwnerFallback(interaction, guildID)

	if common.BotSession == nil {
		return
	}

	_, err = common.BotSession.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	if err != nil {
		logger.WithError(err).WithField("guild", guildID).Warn("failed editing deferred setup response")
	}
}

// seedOwnerFallback records the guild owner so the owner fallback can grant
// the guild its first officer. Without this no one could ever pass the
// officer gate on a fresh guild. Existing configs are left untouched.
func (p *Plugin) seedOwnerFallback(interaction *discordgo.Interaction, guildID int64) {
	ownerID := int64(0)

	if common.BotSession != nil {
		guild, err := common.BotSession.Guild(strconv.FormatInt(guildID, 10))
		if err != nil {
			logger.WithError(err).WithField("guild", guildID).Warn("failed fetching guild for owner seeding")
		} else {
			ownerID = common.ParseInt64(guild.OwnerID)
		}
	}

	// no credential or lookup failed: fall back to the invoker when the
	// interaction payload proves they hold administrator permissions
	if ownerID == 0 && interaction.Member != nil && interaction.Member.User != nil &&
		interaction.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		ownerID = common.ParseInt64(interaction.Member.User.ID)
	}

	if ownerID == 0 {
		return
	}

	if err := perms.SeedOwnerFallback(context.Background(), guildID, ownerID); err != nil {
		logger.WithError(err).WithField("guild", guildID).Error("failed seeding owner fallback config")
	}
}
