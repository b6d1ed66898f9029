package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	portssvc "github.com/inei-sipp/presupuesto_backend/internal/core/ports/services"
	"github.com/inei-sipp/presupuesto_backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// catalogoHandler handles HTTP requests for the format catalog and templates.
type catalogoHandler struct {
	catalogoService portssvc.CatalogoSvcFacade
}

// newCatalogoHandler creates a new catalogoHandler.
func newCatalogoHandler(cs portssvc.CatalogoSvcFacade) *catalogoHandler {
	return &catalogoHandler{
		catalogoService: cs,
	}
}

// RegisterCatalogoRoutes registers routes related to the format catalog.
func RegisterCatalogoRoutes(rg *gin.RouterGroup, catalogoService portssvc.CatalogoSvcFacade) {
	h := newCatalogoHandler(catalogoService)

	catalogo := rg.Group("/catalogo")
	{
		catalogo.GET("/formatos", h.listFormatos)
		catalogo.GET("/plantillas/:key", h.getPlantilla)
		catalogo.GET("/plantillas/:key/descarga", h.descargarPlantilla)
	}
}

// listFormatos godoc
// @Summary List supported formats
// @Description Retrieves the catalog of supported import formats
// @Tags catalogo
// @Produce  json
// @Success 200 {object} dto.CatalogoResponse
// @Security BearerAuth
// @Router /catalogo/formatos [get]
func (h *catalogoHandler) listFormatos(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalogoService.ListarFormatos(c.Request.Context()))
}

// getPlantilla godoc
// @Summary Describe a template layout
// @Description Retrieves the sheet name, columns and first data row of a hand-filled template
// @Tags catalogo
// @Produce  json
// @Param   key path string true "Template key (e.g. formato1)"
// @Success 200 {object} dto.PlantillaResponse
// @Failure 404 {object} map[string]string "Unknown template"
// @Security BearerAuth
// @Router /catalogo/plantillas/{key} [get]
func (h *catalogoHandler) getPlantilla(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key := c.Param("key")

	resp, err := h.catalogoService.GetPlantilla(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plantilla '" + key + "' no encontrada"})
			return
		}
		logger.Error("Failed to get plantilla", slog.String("key", key), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar la plantilla"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// descargarPlantilla godoc
// @Summary Download an empty template workbook
// @Description Generates and downloads an empty xlsx workbook for a hand-filled format
// @Tags catalogo
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   key path string true "Template key (e.g. formato1)"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Unknown template"
// @Failure 500 {object} map[string]string "Failed to generate the workbook"
// @Security BearerAuth
// @Router /catalogo/plantillas/{key}/descarga [get]
func (h *catalogoHandler) descargarPlantilla(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key := c.Param("key")

	contenido, nombre, err := h.catalogoService.GenerarPlantilla(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plantilla '" + key + "' no encontrada"})
			return
		}
		logger.Error("Failed to generate plantilla", slog.String("key", key), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al generar la plantilla"})
		return
	}

	logger.Info("Plantilla generated", slog.String("key", key), slog.Int("bytes", len(contenido)))
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, xlsxContentType, contenido)
}
