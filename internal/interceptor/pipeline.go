package interceptor

import (
	"log/slog"

	"goxviet/internal/composition"
	"goxviet/internal/engine"
	"goxviet/internal/inject"
	"goxviet/internal/logging"
	"goxviet/internal/platform"
)

// PipelineConfig gathers everything needed to assemble a pipeline.
type PipelineConfig struct {
	Interceptor Options
	Settings    engine.Settings
	Composition composition.Options
	Selector    inject.SelectorOptions
	Injector    inject.Options
	// Table is the strategy table; nil means inject.DefaultTable.
	Table  *inject.Table
	Logger *logging.Logger
}

// Pipeline is an assembled interceptor with its parts exposed.
type Pipeline struct {
	*Interceptor
	Client     *engine.Client
	Controller *composition.Controller
	Selector   *inject.Selector
	Injector   *inject.Injector
}

// Build wires the services and engine into a pipeline. Nothing is started.
func Build(svc platform.Services, eng engine.Engine, cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	component := func(name string) *slog.Logger {
		return logger.WithComponent(name).Logger
	}

	client := engine.NewClient(eng, component("engine"))
	client.Apply(cfg.Settings)

	selOpts := cfg.Selector
	selOpts.Logger = component("selector")
	sel := inject.NewSelector(svc.AX, cfg.Table, selOpts)

	injOpts := cfg.Injector
	injOpts.Logger = component("inject")
	inj := inject.New(svc.Poster, svc.AX, sel, injOpts)

	compOpts := cfg.Composition
	compOpts.KeyState = svc.KeyState
	compOpts.Logger = component("composition")
	ctrl := composition.NewController(client, inj, compOpts)

	icOpts := cfg.Interceptor
	icOpts.Logger = component("interceptor")
	return &Pipeline{
		Interceptor: New(svc, client, ctrl, sel, icOpts),
		Client:      client,
		Controller:  ctrl,
		Selector:    sel,
		Injector:    inj,
	}
}
