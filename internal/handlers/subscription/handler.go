package subscription

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"service-admin/internal/domain/payment"
	"service-admin/internal/domain/subscription"
	"service-admin/internal/middleware"
	"service-admin/internal/pkg/response"
	"service-admin/internal/service/lifecycle"
)

type Handler struct {
	lifecycle *lifecycle.Service
}

func NewHandler(lifecycleService *lifecycle.Service) *Handler {
	return &Handler{lifecycle: lifecycleService}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return 0, false
	}
	return id, true
}

func (h *Handler) Subscribe(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	var req subscription.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.lifecycle.Subscribe(c.Request.Context(), &req, adminID)
	if err != nil {
		response.FromError(c, err, "failed to create subscription")
		return
	}

	response.Success(c, http.StatusCreated, "subscription created", result)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "subscription not found")
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", result)
}

func (h *Handler) List(c *gin.Context) {
	var filters subscription.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.lifecycle.List(c.Request.Context(), filters)
	if err != nil {
		response.FromError(c, err, "failed to list subscriptions")
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", result)
}

func (h *Handler) Payments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.lifecycle.Payments(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to list payments")
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", result)
}

func (h *Handler) Logs(c *gin.Context) {
	var filters subscription.LogListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.lifecycle.Logs(c.Request.Context(), filters)
	if err != nil {
		response.FromError(c, err, "failed to list subscription logs")
		return
	}

	response.Success(c, http.StatusOK, "subscription logs retrieved", result)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	paymentID, err := strconv.ParseInt(c.Param("payment_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payment ID", err)
		return
	}

	var req subscription.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.lifecycle.ConfirmPayment(c.Request.Context(), id, paymentID, &req, adminID)
	if err != nil {
		response.FromError(c, err, "failed to confirm payment")
		return
	}

	response.Success(c, http.StatusOK, "payment confirmed", result)
}

// SubscriptionLogs lists the audit trail of one subscription.
func (h *Handler) SubscriptionLogs(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var filters subscription.LogListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}
	filters.SubscriptionID = &id

	result, err := h.lifecycle.Logs(c.Request.Context(), filters)
	if err != nil {
		response.FromError(c, err, "failed to list subscription logs")
		return
	}

	response.Success(c, http.StatusOK, "subscription logs retrieved", result)
}

func (h *Handler) Renew(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req subscription.RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.lifecycle.Renew(c.Request.Context(), id, &req, adminID)
	if err != nil {
		response.FromError(c, err, "failed to renew subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription renewed", result)
}

func (h *Handler) Extend(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req subscription.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.lifecycle.Extend(c.Request.Context(), id, &req, adminID)
	if err != nil {
		response.FromError(c, err, "failed to extend subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription extended", result)
}

func (h *Handler) Upgrade(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req subscription.PlanChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.lifecycle.Upgrade(c.Request.Context(), id, &req, adminID)
	if err != nil {
		response.FromError(c, err, "failed to upgrade subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription upgraded", result)
}

func (h *Handler) Downgrade(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req subscription.PlanChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.lifecycle.Downgrade(c.Request.Context(), id, &req, adminID)
	if err != nil {
		response.FromError(c, err, "failed to downgrade subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription downgraded", result)
}

func (h *Handler) Refund(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req payment.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.lifecycle.Refund(c.Request.Context(), id, &req, adminID)
	if err != nil {
		response.FromError(c, err, "failed to process refund")
		return
	}

	response.Success(c, http.StatusOK, "refund processed", result)
}

func (h *Handler) CancelRefund(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	paymentID, err := strconv.ParseInt(c.Param("payment_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payment ID", err)
		return
	}

	var req payment.CancelRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.lifecycle.CancelRefund(c.Request.Context(), id, paymentID, &req, adminID)
	if err != nil {
		response.FromError(c, err, "failed to cancel refund")
		return
	}

	response.Success(c, http.StatusOK, "refund cancelled", result)
}

func (h *Handler) RefundableSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.lifecycle.RefundableSummary(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to compute refundable amount")
		return
	}

	response.Success(c, http.StatusOK, "refundable amount retrieved", result)
}

func (h *Handler) RefundHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.lifecycle.RefundHistory(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to retrieve refund history")
		return
	}

	response.Success(c, http.StatusOK, "refund history retrieved", result)
}

func (h *Handler) Activate(c *gin.Context) {
	h.statusAction(c, h.lifecycle.Activate, "failed to activate subscription", "subscription activated")
}

func (h *Handler) Suspend(c *gin.Context) {
	h.statusAction(c, h.lifecycle.Suspend, "failed to suspend subscription", "subscription suspended")
}

func (h *Handler) Cancel(c *gin.Context) {
	h.statusAction(c, h.lifecycle.Cancel, "failed to cancel subscription", "subscription cancelled")
}

func (h *Handler) Reactivate(c *gin.Context) {
	h.statusAction(c, h.lifecycle.Reactivate, "failed to reactivate subscription", "subscription reactivated")
}

type statusAction func(ctx context.Context, id int64, req *subscription.StatusActionRequest, adminID int64) (*subscription.Subscription, error)

func (h *Handler) statusAction(c *gin.Context, action statusAction, failMsg, okMsg string) {
	adminID := middleware.MustGetAdminID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req subscription.StatusActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := action(c.Request.Context(), id, &req, adminID)
	if err != nil {
		response.FromError(c, err, failMsg)
		return
	}

	response.Success(c, http.StatusOK, okMsg, result)
}
