package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
	"github.com/Aashish23092/payment-evidence-ocr/service"
	"github.com/Aashish23092/payment-evidence-ocr/storage"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	files          storage.Storage
}

func NewPaymentHandler(paymentService *service.PaymentService, files storage.Storage) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, files: files}
}

// UploadPayments handles POST /cases/:id/payments
func (h *PaymentHandler) UploadPayments(c *gin.Context) {
	caseID, ok := idParam(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	request := &dto.UploadPaymentsRequest{Files: form.File["files[]"]}
	if len(request.Files) == 0 {
		request.Files = form.File["files"]
	}
	if err := request.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	slog.Info("processing payment screenshots", "case_id", caseID, "files", len(request.Files))

	response, err := h.paymentService.Upload(c.Request.Context(), caseID, request.Files)
	if err != nil {
		sendServiceError(c, "Failed to process payments", err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		sendServiceError(c, "Failed to load payment", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetPaymentFile handles GET /payments/:id/file, serving the stored screenshot.
func (h *PaymentHandler) GetPaymentFile(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		sendServiceError(c, "Failed to load payment", err)
		return
	}
	c.FileAttachment(h.files.Path(p.StoredFilename), p.SourceFilename)
}

// UpdatePayment handles PATCH /payments/:id
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payment payload", err)
		return
	}
	p, err := h.paymentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		sendServiceError(c, "Failed to update payment", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ReextractPayment handles POST /payments/:id/reextract[?ocr=true]
func (h *PaymentHandler) ReextractPayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reOCR, _ := strconv.ParseBool(c.DefaultQuery("ocr", "false"))

	p, err := h.paymentService.Reextract(c.Request.Context(), id, reOCR)
	if err != nil {
		sendServiceError(c, "Failed to re-extract payment", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeletePayment handles DELETE /payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		sendServiceError(c, "Failed to delete payment", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExtractText handles POST /extract. Nothing is stored.
func (h *PaymentHandler) ExtractText(c *gin.Context) {
	var req dto.ExtractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid extraction payload", err)
		return
	}
	c.JSON(http.StatusOK, dto.ExtractTextResponse{
		Record:      h.paymentService.ExtractText(req.Text),
		ProcessedAt: time.Now().Format(time.RFC3339),
	})
}
