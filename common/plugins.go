package common

import (
	"github.com/sirupsen/logrus"
)

var Plugins []Plugin

type PluginCategory struct {
	Name string
}

var (
	PluginCategoryCore = &PluginCategory{Name: "Core"}
	PluginCategoryMisc = &PluginCategory{Name: "Misc"}
)

type PluginInfo struct {
	Name     string // Human readable name of the plugin
	SysName  string // snake_case version of the name in lower case
	Category *PluginCategory
}

// Plugin represents a plugin, all plugins needs to implement this at a bare minimum
type Plugin interface {
	PluginInfo() *PluginInfo
}

// PluginWithInit is initialized after the core resources (db, redis) are up
type PluginWithInit interface {
	Plugin
	InitPlugin() error
}

// RegisterPlugin registers a plugin, should be called when the service is starting up
func RegisterPlugin(plugin Plugin) {
	Plugins = append(Plugins, plugin)
	logrus.Info("Registered plugin: " + plugin.PluginInfo().Name)
}
