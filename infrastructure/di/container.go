// Package di wires the application together. Construction is explicit and
// ordered; Close releases resources in reverse order.
package di

import (
	"fmt"

	"go.uber.org/zap"

	"graphcore/application/services"
	"graphcore/domain/services/clustering"
	"graphcore/domain/services/layout"
	"graphcore/infrastructure/config"
	"graphcore/infrastructure/messaging/membus"
	"graphcore/infrastructure/observability"
	pkgerrors "graphcore/pkg/errors"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Bus     *membus.Bus
	Metrics *observability.Collector

	Store            *services.GraphStore
	Processor        *services.DataProcessor
	LinkManager      *services.LinkManager
	LayoutEngine     *layout.Engine
	ClusteringEngine *clustering.Engine

	ErrorHandler *pkgerrors.ErrorHandler
}

// NewContainer builds the full dependency graph from configuration
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	bus := membus.New(logger)

	c := &Container{
		Config:           cfg,
		Logger:           logger,
		Bus:              bus,
		Store:            services.NewGraphStore(cfg.Domain(), bus, logger),
		Processor:        services.NewDataProcessor(logger),
		LinkManager:      services.NewLinkManager(bus, logger),
		LayoutEngine:     layout.NewEngine(logger),
		ClusteringEngine: clustering.NewEngine(logger),
		ErrorHandler:     pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment()),
	}

	if cfg.EnableMetrics {
		c.Metrics = observability.NewCollector("graphcore")
	}

	return c, nil
}

// Close releases container resources
func (c *Container) Close() {
	c.LinkManager.Close()
	_ = c.Logger.Sync()
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
