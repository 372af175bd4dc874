package controller

import (
	"net/http"
	"strconv"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/gin-gonic/gin"
)

// AnalyticsController serves the premium reporting endpoints. Plan checks
// happen in middleware.RequirePlan.
type AnalyticsController struct {
	invoiceService service.InvoiceService
	exportService  service.ExportService
}

func NewAnalyticsController(invoiceService service.InvoiceService, exportService service.ExportService) *AnalyticsController {
	return &AnalyticsController{
		invoiceService: invoiceService,
		exportService:  exportService,
	}
}

// GET /api/v1/analytics?months=
func (ctrl *AnalyticsController) Analytics(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	months, ok := monthsParam(c)
	if !ok {
		return
	}

	analytics, err := ctrl.invoiceService.Analytics(c.Request.Context(), userID, months)
	if err != nil {
		fail(c, "Failed to compute analytics", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": analytics})
}

// Summary is the dashboard roll-up; free on every plan
// GET /api/v1/dashboard/summary
func (ctrl *AnalyticsController) Summary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	summary, err := ctrl.invoiceService.Summary(c.Request.Context(), userID)
	if err != nil {
		fail(c, "Failed to compute invoice summary", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ExportInvoices downloads every matching invoice as one workbook
// GET /api/v1/exports/invoices.xlsx?status=&customer_id=&search=
func (ctrl *AnalyticsController) ExportInvoices(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var filter dto.InvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}

	doc, err := ctrl.exportService.InvoiceListExcel(c.Request.Context(), userID, filter)
	if err != nil {
		fail(c, "Failed to export invoices", err, map[string]interface{}{"user_id": userID})
		return
	}
	sendDocument(c, doc)
}

func monthsParam(c *gin.Context) (int, bool) {
	raw := c.Query("months")
	if raw == "" {
		return 0, true
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months < 0 {
		apperrors.RespondWithValidationError(c, map[string]string{"months": "must be a positive number"})
		return 0, false
	}
	return months, true
}
