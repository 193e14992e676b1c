package main

import (
	"github.com/sirupsen/logrus"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/common/prom"
	"github.com/guildhub-gg/guildhub/interactions"
	"github.com/guildhub-gg/guildhub/perms"
	"github.com/guildhub-gg/guildhub/roleselect"
	"github.com/guildhub-gg/guildhub/schedule"
	"github.com/guildhub-gg/guildhub/web"
)

func main() {
	logrus.SetLevel(logrus.InfoLevel)

	err := common.CoreInit(true)
	if err != nil {
		logrus.WithError(err).Fatal("failed initializing core resources")
	}

	perms.RegisterPlugin()
	roleselect.RegisterPlugin()
	schedule.RegisterPlugin()
	interactions.RegisterPlugin()
	prom.RegisterPlugin()

	for _, p := range common.Plugins {
		if initer, ok := p.(common.PluginWithInit); ok {
			if err := initer.InitPlugin(); err != nil {
				logrus.WithError(err).Fatal("failed initializing plugin ", p.PluginInfo().Name)
			}
		}
	}

	web.Run()
}
