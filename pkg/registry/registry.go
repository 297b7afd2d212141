// Package registry holds the catalog of step actions and worker types
// a workflow may use. Every delegation and every local side effect goes
// through an entry registered here.
package registry

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"plugin"
	"sort"
	"strings"

	"github.com/ordinoproj/ordino/pkg/protocol"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
	workers         map[string]*WorkerDefinition
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log,
		actionFactories: make(map[string]protocol.ActionFactory),
		workers:         make(map[string]*WorkerDefinition),
	}
}

func (r *Registry) RegisterAction(actionFactory protocol.ActionFactory) {
	r.actionFactories[actionFactory.ID()] = actionFactory
}

func (r *Registry) RegisterWorker(definition *WorkerDefinition) {
	r.workers[definition.Type] = definition
}

func (r *Registry) CreateAction(actionType string, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Create(config)
}

// Worker returns the definition for a worker type, including the JSON
// schema its responses are validated against.
func (r *Registry) Worker(workerType string) (*WorkerDefinition, error) {
	definition, ok := r.workers[workerType]
	if !ok {
		return nil, fmt.Errorf("worker type '%s' not registered", workerType)
	}

	return definition, nil
}

// ActionSchema returns the configuration schema for an action type.
func (r *Registry) ActionSchema(actionType string) (map[string]any, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Schema(), nil
}

// AvailableActions returns registered action type ids, sorted.
func (r *Registry) AvailableActions() []string {
	types := make([]string, 0, len(r.actionFactories))
	for actionType := range r.actionFactories {
		types = append(types, actionType)
	}

	sort.Strings(types)

	return types
}

// AvailableWorkers returns registered worker type ids, sorted.
func (r *Registry) AvailableWorkers() []string {
	types := make([]string, 0, len(r.workers))
	for workerType := range r.workers {
		types = append(types, workerType)
	}

	sort.Strings(types)

	return types
}

// LoadActionPlugins loads additional action factories from compiled
// plugins under <pluginsPath>/actions.
func (r *Registry) LoadActionPlugins(pluginsPath string) ([]protocol.ActionFactory, error) {
	return loadPlugin[protocol.ActionFactory](r.logger, pluginsPath, "Action")
}

func loadPlugin[T any](logger *slog.Logger, pluginsPath string, symbolName string) ([]T, error) {
	rootPath := pluginsPath + "/" + strings.ToLower(symbolName) + "s"
	root := os.DirFS(rootPath)

	pluginPathList, err := fs.Glob(root, "**/*.so")
	if err != nil {
		return nil, err
	}

	l := logger.With(slog.String("path", pluginsPath), slog.String("type", symbolName))
	l.Info("Loading plugins")

	pluginList := make([]T, 0, len(pluginPathList))

	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			panic(err)
		}

		v, err := plg.Lookup(symbolName)
		if err != nil {
			panic(err)
		}

		castV, ok := v.(T)
		if !ok {
			panic("Could not cast plugin")
		}

		pluginList = append(pluginList, castV)

		l.Info("Loaded action plugin", slog.String("plugin", p))
	}

	return pluginList, nil
}
