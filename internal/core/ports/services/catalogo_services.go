package services

import (
	"context"

	"github.com/inei-sipp/presupuesto_backend/internal/dto"
)

// CatalogoSvcFacade exposes the format catalog and template generation.
type CatalogoSvcFacade interface {
	ListarFormatos(ctx context.Context) *dto.CatalogoResponse
	GetPlantilla(ctx context.Context, key string) (*dto.PlantillaResponse, error)
	// GenerarPlantilla builds an empty xlsx workbook with the template's
	// sheet, header row and data start position.
	GenerarPlantilla(ctx context.Context, key string) ([]byte, string, error)
}
