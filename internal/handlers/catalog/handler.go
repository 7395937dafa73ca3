package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "service-admin/internal/domain/catalog"
	"service-admin/internal/pkg/response"
	catalogsvc "service-admin/internal/service/catalog"
)

type Handler struct {
	catalog *catalogsvc.Service
}

func NewHandler(catalogService *catalogsvc.Service) *Handler {
	return &Handler{catalog: catalogService}
}

func parseParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid "+label+" ID", err)
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateService(c *gin.Context) {
	var req domain.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.catalog.CreateService(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to create service")
		return
	}

	response.Success(c, http.StatusCreated, "service created", result)
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := parseParam(c, "id", "service")
	if !ok {
		return
	}

	result, err := h.catalog.GetService(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "service not found")
		return
	}

	response.Success(c, http.StatusOK, "service retrieved", result)
}

func (h *Handler) ListServices(c *gin.Context) {
	var filters domain.ServiceListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.catalog.ListServices(c.Request.Context(), filters)
	if err != nil {
		response.FromError(c, err, "failed to list services")
		return
	}

	response.Success(c, http.StatusOK, "services retrieved", result)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := parseParam(c, "id", "service")
	if !ok {
		return
	}

	var req domain.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.catalog.UpdateService(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err, "failed to update service")
		return
	}

	response.Success(c, http.StatusOK, "service updated", result)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := parseParam(c, "id", "service")
	if !ok {
		return
	}

	if err := h.catalog.DeleteService(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to delete service")
		return
	}

	response.Success(c, http.StatusOK, "service deleted", nil)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req domain.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.catalog.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to create category")
		return
	}

	response.Success(c, http.StatusCreated, "category created", result)
}

func (h *Handler) ListCategories(c *gin.Context) {
	result, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "failed to list categories")
		return
	}

	response.Success(c, http.StatusOK, "categories retrieved", result)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseParam(c, "id", "category")
	if !ok {
		return
	}

	var req domain.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.catalog.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err, "failed to update category")
		return
	}

	response.Success(c, http.StatusOK, "category updated", result)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseParam(c, "id", "category")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to delete category")
		return
	}

	response.Success(c, http.StatusOK, "category deleted", nil)
}

func (h *Handler) CreatePrice(c *gin.Context) {
	serviceID, ok := parseParam(c, "id", "service")
	if !ok {
		return
	}

	var req domain.CreatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.catalog.CreatePrice(c.Request.Context(), serviceID, &req)
	if err != nil {
		response.FromError(c, err, "failed to create price option")
		return
	}

	response.Success(c, http.StatusCreated, "price option created", result)
}

func (h *Handler) ListPrices(c *gin.Context) {
	serviceID, ok := parseParam(c, "id", "service")
	if !ok {
		return
	}

	result, err := h.catalog.ListPrices(c.Request.Context(), serviceID)
	if err != nil {
		response.FromError(c, err, "failed to list price options")
		return
	}

	response.Success(c, http.StatusOK, "price options retrieved", result)
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	priceID, ok := parseParam(c, "price_id", "price")
	if !ok {
		return
	}

	var req domain.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.catalog.UpdatePrice(c.Request.Context(), priceID, &req)
	if err != nil {
		response.FromError(c, err, "failed to update price option")
		return
	}

	response.Success(c, http.StatusOK, "price option updated", result)
}

func (h *Handler) DeletePrice(c *gin.Context) {
	priceID, ok := parseParam(c, "price_id", "price")
	if !ok {
		return
	}

	if err := h.catalog.DeletePrice(c.Request.Context(), priceID); err != nil {
		response.FromError(c, err, "failed to delete price option")
		return
	}

	response.Success(c, http.StatusOK, "price option deleted", nil)
}
