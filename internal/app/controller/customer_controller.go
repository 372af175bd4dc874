package controller

import (
	"net/http"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	customerService service.CustomerService
}

func NewCustomerController(customerService service.CustomerService) *CustomerController {
	return &CustomerController{customerService: customerService}
}

// GET /api/v1/customers?search=&page=&page_size=
func (ctrl *CustomerController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var filter dto.ListFilter
	if !bindQuery(c, &filter) {
		return
	}

	customers, total, err := ctrl.customerService.List(c.Request.Context(), userID, filter)
	if err != nil {
		fail(c, "Failed to list customers", err, map[string]interface{}{"user_id": userID})
		return
	}
	filter.Normalize()
	c.JSON(http.StatusOK, pageResponse{Data: customers, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

// GET /api/v1/customers/:id
func (ctrl *CustomerController) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	customer, err := ctrl.customerService.Get(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to get customer", err, map[string]interface{}{"customer_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// POST /api/v1/customers
func (ctrl *CustomerController) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CustomerInput
	if !bindJSON(c, &req) {
		return
	}

	customer, err := ctrl.customerService.Create(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Failed to create customer", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// PUT /api/v1/customers/:id
func (ctrl *CustomerController) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CustomerUpdate
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id

	customer, err := ctrl.customerService.Update(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Failed to update customer", err, map[string]interface{}{"customer_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// DELETE /api/v1/customers/:id
func (ctrl *CustomerController) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.customerService.Deactivate(c.Request.Context(), userID, id); err != nil {
		fail(c, "Failed to deactivate customer", err, map[string]interface{}{"customer_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deactivated"})
}
