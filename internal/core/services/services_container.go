package services

import (
	portsrepo "github.com/inei-sipp/presupuesto_backend/internal/core/ports/repositories"
	portssvc "github.com/inei-sipp/presupuesto_backend/internal/core/ports/services"
	"github.com/inei-sipp/presupuesto_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Importacion: NewImportacionService(repos, cfg),
		Catalogo:    NewCatalogoService(),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ImportacionSvcFacade = (*importacionService)(nil)
	_ portssvc.CatalogoSvcFacade    = (*catalogoService)(nil)
)
