// Package discover implements the discovery reconciliation module: it expands
// a request into target addresses, matches them against the simulated SNMP
// dataset, and reconciles matches into the NetBox inventory.
package discover

import (
	"context"

	"github.com/HerbHall/netseed/internal/netbox"
	"github.com/HerbHall/netseed/internal/plugin"
	"github.com/HerbHall/netseed/internal/simdata"
	"github.com/HerbHall/netseed/internal/store"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Module wires the reconciliation engine, dataset snapshot, inventory client,
// and run history behind the module contract.
type Module struct {
	logger  *zap.Logger
	config  *viper.Viper
	dataset *simdata.Dataset
	inv     netbox.Inventory
	store   *store.SQLiteStore
	metrics *Metrics
	engine  *Engine
	runs    RunRepository

	maxTargets int
}

// Compile-time interface guard.
var _ plugin.Plugin = (*Module)(nil)

// New creates the discover module. maxTargets caps request expansion;
// a non-positive value uses the package default.
func New(dataset *simdata.Dataset, inv netbox.Inventory, st *store.SQLiteStore, metrics *Metrics, maxTargets int) *Module {
	return &Module{
		dataset:    dataset,
		inv:        inv,
		store:      st,
		metrics:    metrics,
		maxTargets: maxTargets,
	}
}

func (m *Module) Name() string    { return "discover" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger
	m.engine = NewEngine(m.dataset, m.inv, m.metrics, logger)
	m.logger.Info("discover module initialized",
		zap.Int("dataset_records", m.dataset.Len()),
	)
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	if err := m.store.Migrate(ctx, m.Name(), migrations()); err != nil {
		return err
	}
	m.runs = NewSQLiteRunRepository(m.store.DB())
	m.logger.Info("discover module started")
	return nil
}

func (m *Module) Stop() error {
	m.logger.Info("discover module stopped")
	return nil
}

func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/run", Handler: m.handleRun},
		{Method: "GET", Path: "/runs", Handler: m.handleListRuns},
		{Method: "GET", Path: "/runs/{id}", Handler: m.handleGetRun},
	}
}
