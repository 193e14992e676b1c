// interactions is the inbound webhook gateway for the remote chat platform:
// it authenticates signed interaction requests, dispatches slash commands and
// RSVP button presses, and always answers with a protocol-valid response.
package interactions

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/common/config"
)

var (
	logger = common.GetPluginLogger(&Plugin{})

	confDiscordPublicKey = config.RegisterOption("guildhub.discord_pubkey", "Hex encoded public key for interaction webhook signatures", "")
)

var (
	metricsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guildhub_interactions_received_total",
		Help: "Inbound interactions by type, after signature verification",
	}, []string{"type"})

	metricsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guildhub_interactions_rejected_total",
		Help: "Interactions rejected before parsing (bad signature or oversized body)",
	})

	metricsRSVPWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guildhub_interactions_rsvp_writes_total",
		Help: "RSVP button presses that resulted in a stored status change",
	})
)

type Plugin struct {
	publicKey ed25519.PublicKey
}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Interactions",
		SysName:  "interactions",
		Category: common.PluginCategoryCore,
	}
}

func RegisterPlugin() {
	p := &Plugin{}

	raw := confDiscordPublicKey.GetString()
	if raw == "" {
		logger.Warn("no interaction public key configured, all webhook requests will be rejected")
	} else {
		decoded, err := hex.DecodeString(raw)
		if err != nil || len(decoded) != ed25519.PublicKeySize {
			logger.Error("invalid interaction public key, all webhook requests will be rejected")
		} else {
			p.publicKey = ed25519.PublicKey(decoded)
		}
	}

	common.RegisterPlugin(p)
}
