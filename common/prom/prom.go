package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/common/config"
)

var ConfPromListenAddr = config.RegisterOption("guildhub.prom_listen_addr", "Prometheus listen address, empty disables the listener", "")

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Prometheus",
		SysName:  "prom",
		Category: common.PluginCategoryCore,
	}
}

func RegisterPlugin() {
	common.RegisterPlugin(&Plugin{})

	addr := ConfPromListenAddr.GetString()
	if addr == "" {
		logrus.Info("no prom listen address defined, not launching prom server")
		return
	}

	go func() {
		logrus.Info("starting prom server on ", addr)
		err := http.ListenAndServe(addr, promhttp.Handler())
		if err != nil {
			logrus.WithError(err).Error("failed starting prom server")
		}
	}()
}
