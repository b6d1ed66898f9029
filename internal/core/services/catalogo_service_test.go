package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	"github.com/inei-sipp/presupuesto_backend/internal/parsers"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
)

type CatalogoServiceTestSuite struct {
	suite.Suite
	service *catalogoService
}

func (suite *CatalogoServiceTestSuite) SetupTest() {
	suite.service = &catalogoService{}
}

func (suite *CatalogoServiceTestSuite) TestListarFormatos() {
	resp := suite.service.ListarFormatos(context.Background())

	suite.Equal(len(parsers.FormatoCatalog), resp.Total)
	suite.Len(resp.Formatos, resp.Total)
	suite.Equal(parsers.FormatoCuadroAOMeta, resp.Formatos[0].Formato)
}

func (suite *CatalogoServiceTestSuite) TestGetPlantilla() {
	resp, err := suite.service.GetPlantilla(context.Background(), "formato1")

	suite.Require().NoError(err)
	suite.Equal("formato1", resp.Plantilla.Key)
	suite.Equal("Formato 1", resp.Plantilla.Hoja)
	suite.Equal(8, resp.Plantilla.FilaInicio)
	suite.NotEmpty(resp.Plantilla.Columnas)
}

func (suite *CatalogoServiceTestSuite) TestGetPlantilla_NoExiste() {
	resp, err := suite.service.GetPlantilla(context.Background(), "formato99")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(resp)
}

func (suite *CatalogoServiceTestSuite) TestGenerarPlantilla() {
	contenido, nombre, err := suite.service.GenerarPlantilla(context.Background(), "tablas")

	suite.Require().NoError(err)
	suite.Equal("plantilla_tablas.xlsx", nombre)
	suite.NotEmpty(contenido)

	f, err := excelize.OpenReader(bytes.NewReader(contenido))
	suite.Require().NoError(err)
	defer f.Close()

	plantilla := parsers.PlantillaCatalog["tablas"]
	suite.Contains(f.GetSheetList(), plantilla.Hoja)

	titulo, err := f.GetCellValue(plantilla.Hoja, "A1")
	suite.Require().NoError(err)
	suite.Equal(plantilla.Nombre, titulo)

	// Headers sit on the row right above the first data row.
	cell, err := excelize.CoordinatesToCellName(1, plantilla.FilaInicio-1)
	suite.Require().NoError(err)
	primera, err := f.GetCellValue(plantilla.Hoja, cell)
	suite.Require().NoError(err)
	suite.Equal(plantilla.Columnas[0], primera)
}

func (suite *CatalogoServiceTestSuite) TestGenerarPlantilla_NoExiste() {
	contenido, nombre, err := suite.service.GenerarPlantilla(context.Background(), "siaf")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(contenido)
	suite.Empty(nombre)
}

func TestCatalogoServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogoServiceTestSuite))
}
