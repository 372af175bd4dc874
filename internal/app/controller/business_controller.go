package controller

import (
	"net/http"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/gin-gonic/gin"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{businessService: businessService}
}

// List returns the caller's active businesses, primary first
// GET /api/v1/businesses
func (ctrl *BusinessController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	businesses, err := ctrl.businessService.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, "Failed to list businesses", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": businesses, "count": len(businesses)})
}

// GET /api/v1/businesses/:id
func (ctrl *BusinessController) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	business, err := ctrl.businessService.Get(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to get business", err, map[string]interface{}{"business_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business})
}

// POST /api/v1/businesses
func (ctrl *BusinessController) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.BusinessInput
	if !bindJSON(c, &req) {
		return
	}

	business, err := ctrl.businessService.Create(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Failed to create business", err, map[string]interface{}{"user_id": userID})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Business created", map[string]interface{}{
		"user_id":     userID,
		"business_id": business.ID,
		"is_primary":  business.IsPrimary,
	})
	c.JSON(http.StatusCreated, gin.H{"business": business})
}

// PUT /api/v1/businesses/:id
func (ctrl *BusinessController) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.BusinessUpdate
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id

	business, err := ctrl.businessService.Update(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, "Failed to update business", err, map[string]interface{}{"business_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business})
}

// SetPrimary makes the business the caller's primary one
// PUT /api/v1/businesses/:id/primary
func (ctrl *BusinessController) SetPrimary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	business, err := ctrl.businessService.SetPrimary(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, "Failed to set primary business", err, map[string]interface{}{"business_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Delete deactivates the business
// DELETE /api/v1/businesses/:id
func (ctrl *BusinessController) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.businessService.Deactivate(c.Request.Context(), userID, id); err != nil {
		fail(c, "Failed to deactivate business", err, map[string]interface{}{"business_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "business deactivated"})
}
