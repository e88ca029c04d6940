package cmd

import (
	"context"
	"fmt"

	"neonlocal/internal/catalog"
	"neonlocal/internal/config"
	"neonlocal/internal/controller"
	"neonlocal/internal/proxy"
	"neonlocal/internal/selection"
	"neonlocal/internal/view"
	"neonlocal/pkg/logging"
)

// application bundles the wired components a command needs. Each command
// builds one per invocation; nothing is shared globally.
type application struct {
	cfg        config.Config
	selections *selection.Store
	catalog    *catalog.Client
	controller *controller.Controller
	notifier   *view.Notifier
}

// newApplication wires config, selection store, catalog client, container
// runtime, and controller, then reconciles against any container that
// outlived a previous process.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured: set NEON_API_KEY or add apiKey to the config file")
	}

	stateDir, err := config.GetProjectStateDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project state directory: %w", err)
	}

	selections, err := selection.NewStore(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open selection store: %w", err)
	}

	runtime, err := proxy.NewRuntime()
	if err != nil {
		return nil, err
	}

	catalogClient := catalog.NewClient(cfg.APIKey)
	notifier := view.NewNotifier()
	ctrl := controller.New(runtime, catalogClient, selections, cfg, notifier, stateDir, controller.Options{})

	if err := ctrl.Reconcile(ctx); err != nil {
		// A dead engine should not block catalog-only commands; lifecycle
		// commands will hit the same error with context attached.
		logging.Debug("App", "Reconciliation skipped: %v", err)
	}

	return &application{
		cfg:        cfg,
		selections: selections,
		catalog:    catalogClient,
		controller: ctrl,
		notifier:   notifier,
	}, nil
}
