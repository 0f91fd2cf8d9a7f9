package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
	"github.com/Aashish23092/payment-evidence-ocr/service"
)

type CaseHandler struct {
	caseService *service.CaseService
}

func NewCaseHandler(caseService *service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// CreateCase handles POST /cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req dto.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid case payload", err)
		return
	}
	created, err := h.caseService.Create(c.Request.Context(), &req)
	if err != nil {
		sendServiceError(c, "Failed to create case", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListCases handles GET /cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	cases, err := h.caseService.List(c.Request.Context())
	if err != nil {
		sendServiceError(c, "Failed to list cases", err)
		return
	}
	c.JSON(http.StatusOK, cases)
}

// GetCase handles GET /cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	detail, err := h.caseService.Get(c.Request.Context(), id)
	if err != nil {
		sendServiceError(c, "Failed to load case", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteCase handles DELETE /cases/:id
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.caseService.Delete(c.Request.Context(), id); err != nil {
		sendServiceError(c, "Failed to delete case", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddNote handles POST /cases/:id/notes
func (h *CaseHandler) AddNote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid note payload", err)
		return
	}
	note, err := h.caseService.AddNote(c.Request.Context(), id, &req)
	if err != nil {
		sendServiceError(c, "Failed to add note", err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /cases/:id/notes
func (h *CaseHandler) ListNotes(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	notes, err := h.caseService.ListNotes(c.Request.Context(), id)
	if err != nil {
		sendServiceError(c, "Failed to list notes", err)
		return
	}
	c.JSON(http.StatusOK, notes)
}
