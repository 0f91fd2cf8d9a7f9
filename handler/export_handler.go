package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/payment-evidence-ocr/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exportService *service.ExportService
}

func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportCSV handles GET /cases/:id/export.csv
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.exportService.WriteCSV(c.Request.Context(), id, &buf); err != nil {
		sendServiceError(c, "Failed to export CSV", err)
		return
	}
	sendAttachment(c, fmt.Sprintf("case_%d_payments.csv", id), "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /cases/:id/export.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.exportService.WriteXLSX(c.Request.Context(), id, &buf); err != nil {
		sendServiceError(c, "Failed to export workbook", err)
		return
	}
	sendAttachment(c, fmt.Sprintf("case_%d_payments.xlsx", id), xlsxContentType, buf.Bytes())
}

// ExportPDF handles GET /cases/:id/export.pdf
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.exportService.WriteEvidencePDF(c.Request.Context(), id, &buf); err != nil {
		sendServiceError(c, "No payment screenshots available to export", err)
		return
	}
	sendAttachment(c, fmt.Sprintf("case_%d_payment_screenshots.pdf", id), "application/pdf", buf.Bytes())
}

// MakePDF handles POST /cases/:id/make-pdf
func (h *ExportHandler) MakePDF(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}
	files := form.File["files[]"]
	if len(files) == 0 {
		files = form.File["pdf_files"]
	}
	if len(files) == 0 {
		sendError(c, http.StatusBadRequest, "Please select at least one image", nil)
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.MakePDF(c.Request.Context(), id, files, &buf); err != nil {
		sendServiceError(c, "No valid images to merge", err)
		return
	}
	sendAttachment(c, fmt.Sprintf("case_%d_evidence.pdf", id), "application/pdf", buf.Bytes())
}

func sendAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
