package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	portssvc "github.com/inei-sipp/presupuesto_backend/internal/core/ports/services"
	"github.com/inei-sipp/presupuesto_backend/internal/dto"
	"github.com/inei-sipp/presupuesto_backend/internal/handlers"
	"github.com/inei-sipp/presupuesto_backend/internal/middleware"
	"github.com/inei-sipp/presupuesto_backend/internal/parsers"
	"github.com/inei-sipp/presupuesto_backend/pkg/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CatalogoHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockImportacion *MockImportacionService
	mockCatalogo    *MockCatalogoService
	jwtSecret       string
}

func (suite *CatalogoHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockImportacion = new(MockImportacionService)
	suite.mockCatalogo = new(MockCatalogoService)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{JWTSecret: suite.jwtSecret}, &portssvc.ServiceContainer{
		Importacion: suite.mockImportacion,
		Catalogo:    suite.mockCatalogo,
	}, nil)
}

func (suite *CatalogoHandlerTestSuite) authHeader() string {
	claims := middleware.AuthClaims{
		Username: "jperez",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	suite.Require().NoError(err)
	return "Bearer " + signed
}

func (suite *CatalogoHandlerTestSuite) TestListFormatos() {
	suite.mockCatalogo.On("ListarFormatos", mock.Anything).Return(&dto.CatalogoResponse{
		Formatos: []parsers.FormatoInfo{
			{Formato: "CUADRO_AO_META", Nombre: "Cuadro AO-Meta", EsRequerido: true},
		},
		Total: 1,
	}).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/catalogo/formatos", nil)
	req.Header.Set("Authorization", suite.authHeader())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CatalogoResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(1, resp.Total)
	suite.Require().Len(resp.Formatos, 1)
	suite.Equal("CUADRO_AO_META", resp.Formatos[0].Formato)
	suite.mockCatalogo.AssertExpectations(suite.T())
}

func (suite *CatalogoHandlerTestSuite) TestListFormatos_SinToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/catalogo/formatos", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockCatalogo.AssertNotCalled(suite.T(), "ListarFormatos", mock.Anything)
}

func (suite *CatalogoHandlerTestSuite) TestGetPlantilla() {
	suite.mockCatalogo.On("GetPlantilla", mock.Anything, "formato1").Return(&dto.PlantillaResponse{
		Plantilla: parsers.Plantilla{
			Key:        "formato1",
			Nombre:     "Formato 1",
			Hoja:       "Formato 1",
			FilaInicio: 8,
		},
	}, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/catalogo/plantillas/formato1", nil)
	req.Header.Set("Authorization", suite.authHeader())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PlantillaResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Formato 1", resp.Plantilla.Hoja)
	suite.Equal(8, resp.Plantilla.FilaInicio)
	suite.mockCatalogo.AssertExpectations(suite.T())
}

func (suite *CatalogoHandlerTestSuite) TestGetPlantilla_NoExiste() {
	suite.mockCatalogo.On("GetPlantilla", mock.Anything, "siaf").
		Return(nil, apperrors.ErrNotFound).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/catalogo/plantillas/siaf", nil)
	req.Header.Set("Authorization", suite.authHeader())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "siaf")
	suite.mockCatalogo.AssertExpectations(suite.T())
}

func (suite *CatalogoHandlerTestSuite) TestDescargarPlantilla() {
	contenido := []byte{0x50, 0x4b, 0x03, 0x04}
	suite.mockCatalogo.On("GenerarPlantilla", mock.Anything, "tablas").
		Return(contenido, "plantilla_tablas.xlsx", nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/catalogo/plantillas/tablas/descarga", nil)
	req.Header.Set("Authorization", suite.authHeader())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(`attachment; filename="plantilla_tablas.xlsx"`, w.Header().Get("Content-Disposition"))
	suite.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	suite.Equal(contenido, w.Body.Bytes())
	suite.mockCatalogo.AssertExpectations(suite.T())
}

func (suite *CatalogoHandlerTestSuite) TestDescargarPlantilla_NoExiste() {
	suite.mockCatalogo.On("GenerarPlantilla", mock.Anything, "desconocida").
		Return(nil, "", apperrors.ErrNotFound).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/catalogo/plantillas/desconocida/descarga", nil)
	req.Header.Set("Authorization", suite.authHeader())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockCatalogo.AssertExpectations(suite.T())
}

func TestCatalogoHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogoHandlerTestSuite))
}
