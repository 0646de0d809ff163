package app

import (
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Signer   usecase.Signer
	Progress usecase.ProgressSink

	// Use cases
	InspectPlan           *usecase.InspectPlan
	DeployPlan            *usecase.DeployPlan
	OrchestrateDeployment *usecase.OrchestrateDeployment
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	signer usecase.Signer,
	progress usecase.ProgressSink,
	inspectPlan *usecase.InspectPlan,
	deployPlan *usecase.DeployPlan,
	orchestrateDeployment *usecase.OrchestrateDeployment,
) (*App, error) {
	return &App{
		Config:                cfg,
		Signer:                signer,
		Progress:              progress,
		InspectPlan:           inspectPlan,
		DeployPlan:            deployPlan,
		OrchestrateDeployment: orchestrateDeployment,
	}, nil
}
