package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	portssvc "github.com/inei-sipp/presupuesto_backend/internal/core/ports/services"
	"github.com/inei-sipp/presupuesto_backend/internal/dto"
	"github.com/inei-sipp/presupuesto_backend/internal/middleware"
)

// importacionHandler handles HTTP requests related to spreadsheet imports.
type importacionHandler struct {
	importacionService portssvc.ImportacionSvcFacade
}

// newImportacionHandler creates a new importacionHandler.
func newImportacionHandler(is portssvc.ImportacionSvcFacade) *importacionHandler {
	return &importacionHandler{
		importacionService: is,
	}
}

// RegisterImportacionRoutes registers routes related to imports.
func RegisterImportacionRoutes(rg *gin.RouterGroup, importacionService portssvc.ImportacionSvcFacade) {
	h := newImportacionHandler(importacionService)

	importacion := rg.Group("/importacion")
	{
		importacion.POST("/upload", h.uploadArchivo)
		importacion.GET("/historial", h.listHistorial)
		importacion.GET("/estado-formatos", h.getEstadoFormatos)
		importacion.DELETE("/formatos/:formato", h.limpiarFormato)
	}
}

// uploadArchivo godoc
// @Summary Import a budget workbook
// @Description Uploads an Excel workbook (Formatos DDNNTT, master data or SIAF/SIGA exports), detects its format, parses it and persists the valid records
// @Tags importacion
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "Excel workbook (.xlsx)"
// @Param   formato formData string false "Declared format (overrides detection)"
// @Success 200 {object} dto.ImportacionResponse
// @Failure 400 {object} map[string]string "Empty or unreadable file"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to process the file"
// @Security BearerAuth
// @Router /importacion/upload [post]
func (h *importacionHandler) uploadArchivo(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Warn("Failed to bind upload form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Upload request without file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere un archivo en el campo 'file'"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo leer el archivo"})
		return
	}
	defer file.Close()
	contenido, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo leer el archivo"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	username, _ := middleware.GetUsernameFromContext(c)

	logger = logger.With(slog.String("archivo", fileHeader.Filename), slog.String("usuario", username))
	logger.Info("Received import upload", slog.String("formato_declarado", req.Formato))

	resp, err := h.importacionService.ProcesarArchivo(c.Request.Context(), portssvc.ArchivoSubido{
		Nombre:           fileHeader.Filename,
		Contenido:        contenido,
		FormatoDeclarado: req.Formato,
		UsuarioID:        userID,
		UsuarioUsername:  username,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrArchivoVacio) {
			logger.Warn("Empty file uploaded")
			c.JSON(http.StatusBadRequest, gin.H{"error": "El archivo está vacío."})
			return
		}
		logger.Error("Failed to process upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al procesar el archivo"})
		return
	}

	logger.Info("Import processed",
		slog.String("formato", resp.FormatoDetectado),
		slog.Int("registros_validos", resp.RegistrosValidos),
		slog.Int("registros_error", resp.RegistrosError))
	c.JSON(http.StatusOK, resp)
}

// listHistorial godoc
// @Summary List import history
// @Description Retrieves the audit trail of past imports, most recent first, optionally filtered by year
// @Tags importacion
// @Produce  json
// @Param   anio query int false "Filter by year of the import date"
// @Success 200 {array} dto.HistorialItem
// @Failure 400 {object} map[string]string "Invalid year"
// @Failure 500 {object} map[string]string "Failed to list history"
// @Security BearerAuth
// @Router /importacion/historial [get]
func (h *importacionHandler) listHistorial(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var anio *int
	if raw := c.Query("anio"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El parámetro 'anio' debe ser numérico"})
			return
		}
		anio = &parsed
	}

	items, err := h.importacionService.ListarHistorial(c.Request.Context(), anio)
	if err != nil {
		logger.Error("Failed to list historial", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar el historial"})
		return
	}

	logger.Info("Historial listed", slog.Int("count", len(items)))
	c.JSON(http.StatusOK, items)
}

// getEstadoFormatos godoc
// @Summary Load status per format
// @Description Retrieves the catalog of supported formats with the outcome of their latest import
// @Tags importacion
// @Produce  json
// @Success 200 {object} dto.EstadoFormatosResponse
// @Failure 500 {object} map[string]string "Failed to compose the dashboard"
// @Security BearerAuth
// @Router /importacion/estado-formatos [get]
func (h *importacionHandler) getEstadoFormatos(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.importacionService.GetEstadoFormatos(c.Request.Context())
	if err != nil {
		logger.Error("Failed to get estado de formatos", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar el estado de formatos"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// limpiarFormato godoc
// @Summary Purge a format
// @Description Deletes the data loaded by one format plus its import history
// @Tags importacion
// @Produce  json
// @Param   formato path string true "Format label (e.g. FORMATO_1)"
// @Success 200 {object} dto.LimpiezaResponse
// @Failure 404 {object} map[string]string "Unknown format"
// @Failure 500 {object} map[string]string "Failed to purge the format"
// @Security BearerAuth
// @Router /importacion/formatos/{formato} [delete]
func (h *importacionHandler) limpiarFormato(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	formato := c.Param("formato")

	logger = logger.With(slog.String("formato", formato))
	logger.Info("Received request to purge format")

	resp, err := h.importacionService.LimpiarFormato(c.Request.Context(), formato)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Unknown format")
			c.JSON(http.StatusNotFound, gin.H{"error": "Formato '" + formato + "' no existe en el catalogo."})
			return
		}
		logger.Error("Failed to purge format", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al limpiar el formato"})
		return
	}

	logger.Info("Format purged",
		slog.Int64("datos_eliminados", resp.RegistrosDatosEliminados),
		slog.Int64("historial_eliminado", resp.RegistrosHistorialEliminados))
	c.JSON(http.StatusOK, resp)
}
