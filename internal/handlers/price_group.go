// internal/handlers/price_group.go
package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/construmax/construmax-backend/internal/catalog"
	"github.com/construmax/construmax-backend/internal/services"
	"github.com/construmax/construmax-backend/internal/utils"
)

type PriceGroupHandler struct {
	priceGroupService *services.PriceGroupService
}

func NewPriceGroupHandler(priceGroupService *services.PriceGroupService) *PriceGroupHandler {
	return &PriceGroupHandler{priceGroupService: priceGroupService}
}

type createGroupRequest struct {
	services.PriceGroupRequest
	InitialPrice *services.GroupPriceRequest `json:"initial_price" validate:"required"`
}

// GET /price-groups
func (h *PriceGroupHandler) GetPriceGroups(c *gin.Context) {
	groups, err := h.priceGroupService.ListGroups(c.Query("category"))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"price_groups": groups,
	})
}

// GET /price-groups/:id
//
// Returns the group with its member products plus the selectable dimension
// options. When thickness/size query params are present the matching
// variant is resolved; sizes are narrowed to the chosen thickness.
func (h *PriceGroupHandler) GetPriceGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price group ID", nil)
		return
	}

	group, err := h.priceGroupService.GetGroup(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Price group")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	flags := catalog.GroupFlags{Thickness: group.Thickness, Size: group.Size}
	sel := catalog.Revalidate(group.Products, flags, catalog.Selection{
		Thickness: c.Query("thickness"),
		Size:      c.Query("size"),
	})

	response := gin.H{
		"price_group": group,
	}

	if group.Thickness {
		response["thicknesses"] = catalog.AvailableThicknesses(group.Products)
	}
	if group.Size {
		response["sizes"] = catalog.AvailableSizes(group.Products, sel)
	}

	if sel.Thickness != "" || sel.Size != "" {
		variant := catalog.Resolve(group.Products, flags, sel)
		if variant == nil {
			variant = catalog.ResolveLoose(group.Products, flags, sel)
		}
		response["variant"] = variant
	}

	utils.SuccessResponse(c, response)
}

// POST /admin/price-groups
func (h *PriceGroupHandler) CreatePriceGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if req.InitialPrice == nil {
		utils.BadRequestResponse(c, "initial_price is required", nil)
		return
	}

	group, err := h.priceGroupService.CreateGroup(&req.PriceGroupRequest, req.InitialPrice)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateName) {
			utils.ConflictResponse(c, "A price group with that name already exists")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"price_group": group,
	})
}

// PUT /admin/price-groups/:id
func (h *PriceGroupHandler) UpdatePriceGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price group ID", nil)
		return
	}

	var req services.PriceGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	group, err := h.priceGroupService.UpdateGroup(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateName) {
			utils.ConflictResponse(c, "A price group with that name already exists")
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Price group")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"price_group": group,
	})
}

// DELETE /admin/price-groups/:id
func (h *PriceGroupHandler) DeletePriceGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price group ID", nil)
		return
	}

	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	if err := h.priceGroupService.DeleteGroup(id, force); err != nil {
		if errors.Is(err, services.ErrHasDependents) {
			utils.BadRequestResponse(c, "Price group has member products; retry with force=true to detach them", nil)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Price group")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"deleted": true,
	})
}

// POST /admin/price-groups/:id/prices
func (h *PriceGroupHandler) AddPrice(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price group ID", nil)
		return
	}

	var req services.GroupPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	price, err := h.priceGroupService.AddPrice(groupID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Price group")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"price": price,
	})
}

// PUT /admin/price-groups/:id/prices/:priceId
func (h *PriceGroupHandler) UpdatePrice(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price group ID", nil)
		return
	}

	priceID, err := uuid.Parse(c.Param("priceId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price ID", nil)
		return
	}

	var req services.GroupPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	price, err := h.priceGroupService.UpdatePrice(groupID, priceID, &req)
	if err != nil {
		if errors.Is(err, services.ErrLastActivePrice) {
			utils.BadRequestResponse(c, "Cannot deactivate the group's last active price", nil)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Price")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"price": price,
	})
}

// DELETE /admin/price-groups/:id/prices/:priceId
func (h *PriceGroupHandler) DeletePrice(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price group ID", nil)
		return
	}

	priceID, err := uuid.Parse(c.Param("priceId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price ID", nil)
		return
	}

	if err := h.priceGroupService.DeletePrice(groupID, priceID); err != nil {
		if errors.Is(err, services.ErrLastActivePrice) {
			utils.BadRequestResponse(c, "Cannot delete the group's last active price", nil)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Price")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"deleted": true,
	})
}

// POST /admin/price-groups/:id/recompute
func (h *PriceGroupHandler) RecomputePrices(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid price group ID", nil)
		return
	}

	updated, err := h.priceGroupService.RecomputeGroupPrices(groupID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Price group")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"updated_products": updated,
	})
}
