// web is the JSON REST surface of the hub, a goji mux with session and
// officer gating middleware in front of the handlers.
package web

import (
	"net/http"

	"goji.io"
	"goji.io/pat"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/common/config"
)

var (
	logger = common.GetFixedPrefixLogger("web")

	ConfListenAddr = config.RegisterOption("guildhub.web_listen_addr", "Web server listen address", ":5000")

	RootMux *goji.Mux
)

// Plugin is implemented by plugins that attach routes to the web server
type Plugin interface {
	common.Plugin
	InitWeb()
}

func Run() {
	mux := SetupRoutes()

	logger.Info("starting guildhub web server on ", ConfListenAddr.GetString())
	err := http.ListenAndServe(ConfListenAddr.GetString(), mux)
	if err != nil {
		logger.WithError(err).Error("web server stopped")
	}
}

// SetupRoutes builds the root mux and lets web plugins attach their routes
func SetupRoutes() *goji.Mux {
	mux := goji.NewMux()
	RootMux = mux

	mux.Use(RequestLogger)
	mux.Use(SessionMiddleware)

	// advisory only, every mutating endpoint re-checks authority server side
	mux.HandleFunc(pat.Get("/api/guild/:guild/permissions"), handlePermissions)
	mux.HandleFunc(pat.Post("/api/guild/:guild/permissions/config"), requireOfficer(handleSetPermConfig))

	// the role catalog is public, selecting requires a signed in user
	mux.HandleFunc(pat.Get("/api/guild/:guild/roles"), handleListRoles)
	mux.HandleFunc(pat.Post("/api/guild/:guild/roles/select"), requireSession(handleSelectRole))
	mux.HandleFunc(pat.Post("/api/guild/:guild/roles/config"), requireOfficer(handleConfigureRole))
	mux.HandleFunc(pat.Post("/api/guild/:guild/roles/reset"), requireOfficer(handleResetRole))
	mux.HandleFunc(pat.Post("/api/guild/:guild/roles/assign"), requireOfficer(handleAssignRole))

	mux.HandleFunc(pat.Get("/api/guild/:guild/sessions"), handleListSessions)
	mux.HandleFunc(pat.Post("/api/guild/:guild/sessions"), requireOfficer(handleCreateSession))
	mux.HandleFunc(pat.Patch("/api/guild/:guild/sessions/:session"), requireOfficer(handleUpdateSession))
	mux.HandleFunc(pat.Delete("/api/guild/:guild/sessions/:session"), requireOfficer(handleDeleteSession))

	for _, plugin := range common.Plugins {
		if wp, ok := plugin.(Plugin); ok {
			wp.InitWeb()
			logger.Info("initialized web plugin: ", plugin.PluginInfo().Name)
		}
	}

	return mux
}
