package payment

import (
	"io"
	"net/http"

	"tripmarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/init", h.InitPayment)
}

// RegisterWebhookRoutes mounts the provider callback; it authenticates by
// signature, not by session.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", h.Webhook)
}

func (h *Handler) InitPayment(c *gin.Context) {
	var req InitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.InitPayment(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case ErrForbidden:
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
		case ErrNotPayable:
			response.Error(c, http.StatusConflict, "NOT_PAYABLE", "Booking is not awaiting payment")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to init payment")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": res})
}

func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unreadable body")
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), c.GetHeader("X-Paystack-Signature"), body)
	if err != nil {
		switch err {
		case ErrInvalidSignature:
			response.Error(c, http.StatusUnauthorized, "INVALID_SIGNATURE", "Signature verification failed")
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown payment reference")
		case ErrAmountMismatch:
			response.Error(c, http.StatusBadRequest, "AMOUNT_MISMATCH", "Paid amount does not match")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process webhook")
		}
		return
	}

	c.String(http.StatusOK, "ok")
}
