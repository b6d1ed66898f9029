package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	portssvc "github.com/inei-sipp/presupuesto_backend/internal/core/ports/services"
	"github.com/inei-sipp/presupuesto_backend/internal/dto"
	"github.com/inei-sipp/presupuesto_backend/internal/parsers"
	"github.com/xuri/excelize/v2"
)

// catalogoService serves the static format catalog and builds empty template
// workbooks for the hand-filled formats.
type catalogoService struct{}

// NewCatalogoService creates the catalog service.
func NewCatalogoService() portssvc.CatalogoSvcFacade {
	return &catalogoService{}
}

func (s *catalogoService) ListarFormatos(ctx context.Context) *dto.CatalogoResponse {
	return &dto.CatalogoResponse{
		Formatos: parsers.FormatoCatalog,
		Total:    len(parsers.FormatoCatalog),
	}
}

func (s *catalogoService) GetPlantilla(ctx context.Context, key string) (*dto.PlantillaResponse, error) {
	plantilla, ok := parsers.PlantillaCatalog[key]
	if !ok {
		return nil, fmt.Errorf("plantilla '%s': %w", key, apperrors.ErrNotFound)
	}
	return &dto.PlantillaResponse{Plantilla: plantilla}, nil
}

// GenerarPlantilla builds an empty workbook with the template's sheet name,
// title rows and header row, ready to be filled in and re-uploaded.
func (s *catalogoService) GenerarPlantilla(ctx context.Context, key string) ([]byte, string, error) {
	plantilla, ok := parsers.PlantillaCatalog[key]
	if !ok {
		return nil, "", fmt.Errorf("plantilla '%s': %w", key, apperrors.ErrNotFound)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := plantilla.Hoja
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetCellValue(sheet, "A1", plantilla.Nombre); err != nil {
		return nil, "", fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.SetCellValue(sheet, "A2", plantilla.Descripcion); err != nil {
		return nil, "", fmt.Errorf("failed to write description: %w", err)
	}

	// Parsers expect the column headers on the row right above the data.
	headerRow := plantilla.FilaInicio - 1
	if headerRow < 3 {
		headerRow = 3
	}
	for i, col := range plantilla.Columnas {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("plantilla_%s.xlsx", key), nil
}
