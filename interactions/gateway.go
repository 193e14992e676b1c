package interactions

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"goji.io/pat"

	"github.com/guildhub-gg/guildhub/web"
)

// MaxBodySize is a denial-of-service guard, not a protocol requirement
const MaxBodySize = 100 * 1024

var _ web.Plugin = (*Plugin)(nil)

func (p *Plugin) InitWeb() {
	web.RootMux.HandleFunc(pat.Post("/interactions"), p.HandleInteraction)
}

// HandleInteraction is the webhook endpoint. Signature verification happens
// on the raw bytes before any JSON parsing; once a request is authenticated
// it is always answered with a protocol-valid response, store failures are
// logged and swallowed into a silent ack.
func (p *Plugin) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil || len(body) > MaxBodySize {
		metricsRejected.Inc()
		http.Error(w, "invalid request", http.StatusUnauthorized)
		return
	}

	timestamp := r.Header.Get("X-Signature-Timestamp")
	signature := r.Header.Get("X-Signature-Ed25519")
	if !verifySignature(p.publicKey, timestamp, signature, body) {
		metricsRejected.Inc()
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discordgo.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		// authenticated but unparseable, not a client error we can answer
		// more specifically
		logger.WithError(err).Warn("failed parsing verified interaction payload")
		silentAck(w)
		return
	}

	metricsReceived.With(map[string]string{"type": strconv.Itoa(int(interaction.Type))}).Inc()

	switch interaction.Type {
	case discordgo.InteractionPing:
		writeResponse(w, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
	case discordgo.InteractionApplicationCommand:
		p.handleCommand(r, w, &interaction)
	case discordgo.InteractionMessageComponent:
		p.handleComponent(r, w, &interaction)
	default:
		// an unrecognized interaction is not a client error, it is ignored
		silentAck(w)
	}
}

func (p *Plugin) handleCommand(r *http.Request, w http.ResponseWriter, interaction *discordgo.Interaction) {
	data := interaction.ApplicationCommandData()

	switch data.Name {
	case "setup":
		p.handleSetupCommand(r.Context(), w, interaction)
	default:
		silentAck(w)
	}
}

// interactionUserID resolves the acting user, guild interactions carry a
// member, DM interactions a bare user
func interactionUserID(interaction *discordgo.Interaction) int64 {
	if interaction.Member != nil && interaction.Member.User != nil {
		return parseSnowflake(interaction.Member.User.ID)
	}
	if interaction.User != nil {
		return parseSnowflake(interaction.User.ID)
	}

	return 0
}

func parseSnowflake(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}

	return id
}

func writeResponse(w http.ResponseWriter, resp *discordgo.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.WithError(err).Error("failed writing interaction response")
	}
}

// silentAck acknowledges the interaction without any visible change, used for
// unknown interactions and for swallowed internal failures
func silentAck(w http.ResponseWriter) {
	writeResponse(w, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
}
