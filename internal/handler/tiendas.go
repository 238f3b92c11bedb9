package handler

import (
	"net/http"

	"cuadrecaja/internal/apierror"
	"cuadrecaja/internal/dto"
	"cuadrecaja/internal/middleware"
	"cuadrecaja/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TiendasHandler struct{ svc service.TiendaService }

func NewTiendasHandler(svc service.TiendaService) *TiendasHandler { return &TiendasHandler{svc: svc} }

// Crear creates a tienda under the caller's negocio.
func (h *TiendasHandler) Crear(c *gin.Context) {
	var req dto.CrearTiendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	negocioID, err := uuid.Parse(claims.NegocioID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("negocio inválido en el token"))
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), negocioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar returns the active tiendas of the caller's negocio.
func (h *TiendasHandler) Listar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	negocioID, err := uuid.Parse(claims.NegocioID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("negocio inválido en el token"))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), negocioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
