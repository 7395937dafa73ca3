package plan

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"service-admin/internal/domain/plan"
	"service-admin/internal/pkg/response"
	"service-admin/internal/service/planadmin"
)

type Handler struct {
	plans *planadmin.Service
}

func NewHandler(planService *planadmin.Service) *Handler {
	return &Handler{plans: planService}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var req plan.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.plans.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to create plan")
		return
	}

	response.Success(c, http.StatusCreated, "plan created", result)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "plan not found")
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", result)
}

func (h *Handler) List(c *gin.Context) {
	var filters plan.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.plans.List(c.Request.Context(), filters)
	if err != nil {
		response.FromError(c, err, "failed to list plans")
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", result)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req plan.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.plans.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err, "failed to update plan")
		return
	}

	response.Success(c, http.StatusOK, "plan updated", result)
}

func (h *Handler) Activate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.plans.Activate(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to activate plan")
		return
	}

	response.Success(c, http.StatusOK, "plan activated", nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.plans.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to deactivate plan")
		return
	}

	response.Success(c, http.StatusOK, "plan deactivated", nil)
}
