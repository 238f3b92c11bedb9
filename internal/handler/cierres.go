package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cuadrecaja/internal/apierror"
	"cuadrecaja/internal/dto"
	"cuadrecaja/internal/infra"
	"cuadrecaja/internal/repository"
	"cuadrecaja/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CierresHandler struct {
	svc            service.CierreService
	pdfStoragePath string
}

func NewCierresHandler(svc service.CierreService, pdfStoragePath string) *CierresHandler {
	return &CierresHandler{svc: svc, pdfStoragePath: pdfStoragePath}
}

// tiendaIDParam parses the :tiendaId path segment; writes the 400 itself.
func tiendaIDParam(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("tiendaId")
	if raw == "" {
		c.JSON(http.StatusBadRequest, apierror.New("se requiere el identificador de la tienda"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("identificador de tienda inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// writeCierreError maps domain errors onto HTTP statuses. Transient lock
// failures go out as 500 so clients retry with backoff.
func writeCierreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTiendaRequerida),
		errors.Is(err, service.ErrPeriodoAbierto),
		errors.Is(err, service.ErrPeriodoCerrado):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrSinPeriodo):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, repository.ErrLockTimeout):
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

// Abrir godoc
// @Summary Abre un nuevo período para la tienda
// @Tags periodos
// @Produce json
// @Security BearerAuth
// @Param tiendaId path string true "ID de la tienda"
// @Success 201 {object} dto.PeriodoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/periodos/{tiendaId}/abrir [post]
func (h *CierresHandler) Abrir(c *gin.Context) {
	tiendaID, ok := tiendaIDParam(c)
	if !ok {
		return
	}
	periodo, err := h.svc.AbrirPeriodo(c.Request.Context(), tiendaID)
	if err != nil {
		writeCierreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPeriodoResponse(periodo))
}

// Actual godoc
// @Summary Obtiene el período más reciente de la tienda
// @Tags periodos
// @Produce json
// @Security BearerAuth
// @Param tiendaId path string true "ID de la tienda"
// @Success 200 {object} dto.PeriodoActualResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/periodos/{tiendaId}/actual [get]
func (h *CierresHandler) Actual(c *gin.Context) {
	tiendaID, ok := tiendaIDParam(c)
	if !ok {
		return
	}
	periodo, err := h.svc.ObtenerPeriodoActual(c.Request.Context(), tiendaID)
	if err != nil {
		writeCierreError(c, err)
		return
	}
	if periodo == nil {
		// Absence of history is not an error
		c.JSON(http.StatusOK, dto.PeriodoActualResponse{
			Periodo:     nil,
			EstaAbierto: false,
			Mensaje:     "la tienda no tiene períodos",
		})
		return
	}
	c.JSON(http.StatusOK, dto.PeriodoActualResponse{
		Periodo:     dto.NewPeriodoResponse(periodo),
		EstaAbierto: periodo.EstaAbierto(),
	})
}

// Cerrar godoc
// @Summary Cierra el período abierto de la tienda
// @Tags periodos
// @Produce json
// @Security BearerAuth
// @Param tiendaId path string true "ID de la tienda"
// @Success 201 {object} dto.PeriodoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/periodos/{tiendaId}/cerrar [put]
func (h *CierresHandler) Cerrar(c *gin.Context) {
	tiendaID, ok := tiendaIDParam(c)
	if !ok {
		return
	}
	periodo, err := h.svc.CerrarPeriodo(c.Request.Context(), tiendaID)
	if err != nil {
		writeCierreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPeriodoResponse(periodo))
}

// Historial godoc
// @Summary Lista los períodos de la tienda, más recientes primero
// @Tags periodos
// @Produce json
// @Security BearerAuth
// @Param tiendaId path string true "ID de la tienda"
// @Success 200 {object} dto.HistorialPeriodosResponse
// @Router /v1/periodos/{tiendaId}/historial [get]
func (h *CierresHandler) Historial(c *gin.Context) {
	tiendaID, ok := tiendaIDParam(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	periodos, total, err := h.svc.Historial(c.Request.Context(), tiendaID, page, limit)
	if err != nil {
		writeCierreError(c, err)
		return
	}
	resp := dto.HistorialPeriodosResponse{Page: page, Limit: limit, Total: total}
	for i := range periodos {
		resp.Data = append(resp.Data, *dto.NewPeriodoResponse(&periodos[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Reporte godoc
// @Summary Descarga el resumen PDF de un período cerrado
// @Tags periodos
// @Produce application/pdf
// @Security BearerAuth
// @Param tiendaId path string true "ID de la tienda"
// @Param id path string true "ID del período"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/periodos/{tiendaId}/reporte/{id} [get]
func (h *CierresHandler) Reporte(c *gin.Context) {
	tiendaID, ok := tiendaIDParam(c)
	if !ok {
		return
	}
	periodoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("identificador de período inválido"))
		return
	}

	periodo, err := h.svc.ObtenerPeriodo(c.Request.Context(), periodoID)
	if err != nil {
		writeCierreError(c, err)
		return
	}
	if periodo.TiendaID != tiendaID {
		c.JSON(http.StatusNotFound, apierror.New("el período no pertenece a esta tienda"))
		return
	}
	if periodo.EstaAbierto() {
		c.JSON(http.StatusBadRequest, apierror.New("el período aún está abierto"))
		return
	}

	path, err := infra.GenerateResumenPDF(periodo, h.pdfStoragePath)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="resumen_%s.pdf"`, periodo.ID))
	c.File(path)
}
