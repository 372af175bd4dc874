package controller

import (
	"net/http"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/gin-gonic/gin"
)

type InvoiceController struct {
	invoiceService service.InvoiceService
	exportService  service.ExportService
	emailService   service.EmailService
}

func NewInvoiceController(
	invoiceService service.InvoiceService,
	exportService service.ExportService,
	emailService service.EmailService,
) *InvoiceController {
	return &InvoiceController{
		invoiceService: invoiceService,
		exportService:  exportService,
		emailService:   emailService,
	}
}

// List returns the caller's invoices, newest first
// GET /api/v1/invoices?status=&customer_id=&search=&page=&page_size=
func (ctrl *InvoiceController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var filter dto.InvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}

	invoices, total, err := ctrl.invoiceService.List(c.Request.Context(), userID, filter)
	if err != nil {
		fail(c, "Failed to list invoices", err, map[string]interface{}{"user_id": userID})
		return
	}
	filter.Normalize()
	c.JSON(http.StatusOK, pageResponse{Data: invoices, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

// GET /api/v1/invoices/:id
func (ctrl *InvoiceController) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := ctrl.invoiceService.Get(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to get invoice", err, map[string]interface{}{"invoice_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// Create computes totals and stores the invoice with its lines
// POST /api/v1/invoices
func (ctrl *InvoiceController) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.InvoiceInput
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := ctrl.invoiceService.Create(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Failed to create invoice", err, map[string]interface{}{
			"user_id":        userID,
			"invoice_number": req.InvoiceNumber,
		})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Invoice created", map[string]interface{}{
		"user_id":        userID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"total_amount":   invoice.TotalAmount.String(),
	})
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

// PUT /api/v1/invoices/:id
func (ctrl *InvoiceController) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.InvoiceUpdate
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id

	invoice, err := ctrl.invoiceService.Update(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Failed to update invoice", err, map[string]interface{}{"invoice_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// PUT /api/v1/invoices/:id/status
func (ctrl *InvoiceController) UpdateStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.InvoiceStatusInput
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := ctrl.invoiceService.UpdateStatus(c.Request.Context(), userID, id, req)
	if err != nil {
		fail(c, "Failed to update invoice status", err, map[string]interface{}{
			"invoice_id": id,
			"status":     req.Status,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// DELETE /api/v1/invoices/:id
func (ctrl *InvoiceController) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.invoiceService.Delete(c.Request.Context(), userID, id); err != nil {
		fail(c, "Failed to delete invoice", err, map[string]interface{}{"invoice_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice deleted"})
}

// GET /api/v1/invoices/:id/pdf
func (ctrl *InvoiceController) PDF(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := ctrl.exportService.InvoicePDF(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to render invoice PDF", err, map[string]interface{}{"invoice_id": id})
		return
	}
	sendDocument(c, doc)
}

// GET /api/v1/invoices/:id/excel
func (ctrl *InvoiceController) Excel(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := ctrl.exportService.InvoiceExcel(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to render invoice workbook", err, map[string]interface{}{"invoice_id": id})
		return
	}
	sendDocument(c, doc)
}

// Archive stores the PDF in object storage and returns a download link
// POST /api/v1/invoices/:id/archive
func (ctrl *InvoiceController) Archive(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	archived, err := ctrl.exportService.Archive(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to archive invoice", err, map[string]interface{}{"invoice_id": id})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"archive": archived})
}

// SendEmail mails the invoice PDF. A delivery failure is recorded on the
// returned log rather than reported as an HTTP error.
// POST /api/v1/invoices/:id/email
func (ctrl *InvoiceController) SendEmail(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SendInvoiceEmailInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	emailLog, err := ctrl.emailService.SendInvoice(c.Request.Context(), userID, id, req)
	if err != nil {
		fail(c, "Failed to send invoice email", err, map[string]interface{}{"invoice_id": id})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"email_log": emailLog})
}

// GET /api/v1/invoices/:id/emails
func (ctrl *InvoiceController) ListEmails(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	logs, err := ctrl.emailService.ListLogs(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to list email logs", err, map[string]interface{}{"invoice_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email_logs": logs})
}

// RetryEmail resends a failed email log
// POST /api/v1/emails/:id/retry
func (ctrl *InvoiceController) RetryEmail(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	emailLog, err := ctrl.emailService.Retry(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Email retry rejected", err, map[string]interface{}{"email_log_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email_log": emailLog})
}
