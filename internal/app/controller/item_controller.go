package controller

import (
	"net/http"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxImportSize caps catalog uploads
const maxImportSize = 5 << 20

type ItemController struct {
	itemService   service.ItemService
	exportService service.ExportService
}

func NewItemController(itemService service.ItemService, exportService service.ExportService) *ItemController {
	return &ItemController{
		itemService:   itemService,
		exportService: exportService,
	}
}

// GET /api/v1/items?search=&category=&page=&page_size=
func (ctrl *ItemController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var filter dto.ListFilter
	if !bindQuery(c, &filter) {
		return
	}

	items, total, err := ctrl.itemService.List(c.Request.Context(), userID, filter)
	if err != nil {
		fail(c, "Failed to list items", err, map[string]interface{}{"user_id": userID})
		return
	}
	filter.Normalize()
	c.JSON(http.StatusOK, pageResponse{Data: items, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

// GET /api/v1/items/:id
func (ctrl *ItemController) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := ctrl.itemService.Get(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to get item", err, map[string]interface{}{"item_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// POST /api/v1/items
func (ctrl *ItemController) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ItemInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := ctrl.itemService.Create(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Failed to create item", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// PUT /api/v1/items/:id
func (ctrl *ItemController) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemUpdate
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id

	item, err := ctrl.itemService.Update(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Failed to update item", err, map[string]interface{}{"item_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DELETE /api/v1/items/:id
func (ctrl *ItemController) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.itemService.Deactivate(c.Request.Context(), userID, id); err != nil {
		fail(c, "Failed to deactivate item", err, map[string]interface{}{"item_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item deactivated"})
}

// Import loads catalog rows from an uploaded .xlsx sheet. Either every row
// is created or none is.
// POST /api/v1/items/import (multipart field "file")
func (ctrl *ItemController) Import(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "file is required")
		return
	}
	if header.Size > maxImportSize {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "file exceeds 5MB")
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, "Failed to open uploaded catalog", err, nil)
		return
	}
	defer file.Close()

	created, err := ctrl.exportService.ImportCatalog(c.Request.Context(), userID, file)
	if err != nil {
		fail(c, "Catalog import failed", err, map[string]interface{}{
			"user_id":  userID,
			"filename": header.Filename,
		})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Catalog imported", map[string]interface{}{
		"user_id": userID,
		"created": created,
	})
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

// Template downloads the empty import sheet
// GET /api/v1/items/import/template
func (ctrl *ItemController) Template(c *gin.Context) {
	doc, err := ctrl.exportService.CatalogTemplate()
	if err != nil {
		fail(c, "Failed to build catalog template", err, nil)
		return
	}
	sendDocument(c, doc)
}

// sendDocument streams a rendered file as an attachment.
func sendDocument(c *gin.Context, doc *service.Document) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
