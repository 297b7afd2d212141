// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/registry"
	"github.com/ordinoproj/ordino/pkg/taskfile"
	"github.com/ordinoproj/ordino/pkg/workflows"
)

func registerActionPlugins(reg *registry.Registry, pluginsPath string) {
	actionPlugins, err := reg.LoadActionPlugins(pluginsPath)
	if err != nil {
		panic(err)
	}

	for _, plugin := range actionPlugins {
		reg.RegisterAction(plugin)
	}
}

// NewRegistry builds the catalog of worker types and step actions every
// command shares. Plugins are loaded first so a plugin cannot shadow a
// native action id.
func NewRegistry(logger *slog.Logger, pluginsPath string, taskFiles taskfile.Store, confirmer protocol.Confirmer) *registry.Registry {
	reg := registry.NewRegistry(logger)

	if pluginsPath != "" {
		registerActionPlugins(reg, pluginsPath)
	}

	registry.RegisterBuiltinWorkers(reg)
	workflows.Register(reg, workflows.Deps{
		TaskFiles: taskFiles,
		Confirmer: confirmer,
	})

	return reg
}
