package handler

import (
	"net/http"

	"cuadrecaja/internal/apierror"
	"cuadrecaja/internal/dto"
	"cuadrecaja/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear registers a catalog entry for a tienda.
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar returns the active catalog of a tienda.
func (h *ProductosHandler) Listar(c *gin.Context) {
	tiendaID, err := uuid.Parse(c.Query("tienda_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("tienda_id inválido"))
		return
	}
	resp, err := h.svc.ListarPorTienda(c.Request.Context(), tiendaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
