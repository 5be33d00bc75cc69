package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lostfound-desk/internal/model"
	"lostfound-desk/internal/mw"
	"lostfound-desk/internal/store"
)

func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, model.ErrorBody{Message: message})
}

// CreateGarment handles POST /prendas.
func (h *Handler) CreateGarment(c *gin.Context) {
	var req model.CreatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Datos incompletos o inválidos")
		return
	}

	if msg := validateCreate(&req); msg != "" {
		errorJSON(c, http.StatusBadRequest, msg)
		return
	}

	g := req.Garment()
	if err := h.store.CreateGarment(c.Request.Context(), &g); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			errorJSON(c, http.StatusConflict, "Ya existe una prenda similar registrada para este cliente")
			return
		}
		h.logger.Error("create garment failed", zap.String("request_id", mw.GetRequestID(c)), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "Error al registrar la prenda")
		return
	}

	h.logger.Info("garment registered",
		zap.String("request_id", mw.GetRequestID(c)),
		zap.Int64("id", g.ID),
		zap.String("rut", g.RUTKey),
	)
	c.JSON(http.StatusCreated, model.CreatedGarment{ID: g.ID, Message: "Prenda registrada exitosamente"})
}

// validateCreate trims the text fields in place and checks the selectors
// against their fixed sets. It returns the first problem found.
func validateCreate(req *model.CreatePayload) string {
	req.OwnerName = strings.TrimSpace(req.OwnerName)
	req.RUT = strings.TrimSpace(req.RUT)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Notes = strings.TrimSpace(req.Notes)
	if req.OwnerName == "" || req.RUT == "" || req.Phone == "" || req.Email == "" {
		return "Datos incompletos o inválidos"
	}

	var ok bool
	if req.Type, ok = model.ParseGarmentType(string(req.Type)); !ok {
		return "Tipo de prenda inválido"
	}
	if req.Size, ok = model.ParseSize(string(req.Size)); !ok {
		return "Talla inválida"
	}
	if req.Condition, ok = model.ParseCondition(string(req.Condition)); !ok {
		return "Estado de la prenda inválido"
	}
	return ""
}

// SearchGarments handles GET /api/buscar?rut=.
func (h *Handler) SearchGarments(c *gin.Context) {
	rut := strings.TrimSpace(c.Query("rut"))
	if rut == "" {
		errorJSON(c, http.StatusBadRequest, "El parámetro rut es obligatorio")
		return
	}

	garments, err := h.store.FindByRUT(c.Request.Context(), rut)
	if err != nil {
		h.logger.Error("search failed", zap.String("request_id", mw.GetRequestID(c)), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "Error al buscar prendas")
		return
	}

	message := fmt.Sprintf("Se encontraron %d prenda(s)", len(garments))
	if len(garments) == 0 {
		message = "No se encontraron prendas para este RUT"
	}
	c.JSON(http.StatusOK, model.SearchEnvelope{
		Message: message,
		Count:   len(garments),
		RUT:     rut,
		Data:    garments,
	})
}

// UpdateReturnStatus handles PATCH and PUT /api/prendas/:id/estado.
func (h *Handler) UpdateReturnStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorJSON(c, http.StatusBadRequest, "ID de prenda inválido")
		return
	}

	var req model.StatusUpdatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Estado de devolución inválido")
		return
	}
	status, ok := model.ParseReturnStatus(string(req.ReturnStatus))
	if !ok {
		errorJSON(c, http.StatusBadRequest, "Estado de devolución inválido")
		return
	}

	g, err := h.store.UpdateReturnStatus(c.Request.Context(), id, status, h.now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "Prenda no encontrada")
			return
		}
		h.logger.Error("status update failed",
			zap.String("request_id", mw.GetRequestID(c)),
			zap.Int64("id", id),
			zap.Error(err),
		)
		errorJSON(c, http.StatusInternalServerError, "Error al actualizar el estado")
		return
	}

	emailStatus := h.mailer.Notify(*g)
	h.logger.Info("return status updated",
		zap.String("request_id", mw.GetRequestID(c)),
		zap.Int64("id", id),
		zap.String("status", string(status)),
		zap.Bool("email_sent", emailStatus.Sent),
		zap.String("email_reason", emailStatus.Reason),
	)
	c.JSON(http.StatusOK, model.StatusUpdateResponse{
		Message:     fmt.Sprintf("Estado actualizado a: %s", status),
		Data:        g,
		EmailStatus: &emailStatus,
	})
}
