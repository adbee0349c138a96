package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vanroute/vanroute-api/internal/jobs"
	"github.com/vanroute/vanroute-api/internal/middleware"
	"github.com/vanroute/vanroute-api/internal/models"
	"github.com/vanroute/vanroute-api/internal/services"
	"github.com/vanroute/vanroute-api/pkg/logger"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	worker         *jobs.Worker
}

func NewPaymentHandler(paymentService *services.PaymentService, worker *jobs.Worker) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, worker: worker}
}

// @Summary Get Payment
// @Description Get a single payment obligation
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.FindByID(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary List Contract Payments
// @Description Get a contract's statement, open obligations first
// @Tags Payments
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts/{contract_id}/payments [get]
func (h *PaymentHandler) IndexByContract(c *gin.Context) {
	contractID, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	payments, err := h.paymentService.ListByContract(c.Request.Context(), middleware.GetUserID(c), uint(contractID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var responses []interface{}
	for _, payment := range payments {
		responses = append(responses, payment.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}

// @Summary List Overdue Payments
// @Description Get the operator's overdue obligations across all contracts
// @Tags Payments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments/overdue [get]
func (h *PaymentHandler) Overdue(c *gin.Context) {
	payments, err := h.paymentService.ListOverdue(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, payment := range payments {
		responses = append(responses, payment.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}

type SettleRequest struct {
	PaidAmount  decimal.Decimal `json:"paid_amount" binding:"required"`
	PaidDate    *string         `json:"paid_date"`
	GatewayTxID *string         `json:"gateway_tx_id"`
}

// @Summary Settle Payment
// @Description Mark an open obligation as paid
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param request body SettleRequest true "Settlement Data"
// @Success 200 {object} models.PaymentResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/settle [post]
func (h *PaymentHandler) Settle(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valor pago é obrigatório"})
		return
	}
	if !req.PaidAmount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valor pago deve ser maior que zero"})
		return
	}

	in := services.SettleInput{
		PaidAmount:  req.PaidAmount,
		GatewayTxID: req.GatewayTxID,
	}
	if req.PaidDate != nil && *req.PaidDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.PaidDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data de pagamento deve ter formato YYYY-MM-DD"})
			return
		}
		in.PaidDate = &parsed
	}

	payment, err := h.paymentService.Settle(c.Request.Context(), middleware.GetUserID(c), uint(id), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.recordSettlement(payment)
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// recordSettlement writes the settlement audit entry off the request path.
func (h *PaymentHandler) recordSettlement(payment *models.Payment) {
	id := payment.ID
	contractID := payment.ContractID
	reference := payment.MonthRef().String()
	paidAmount := payment.PaidAmount.String()

	h.worker.EnqueueAsync(func(ctx context.Context) error {
		logger.Info("Pagamento liquidado",
			"payment_id", id,
			"contract_id", contractID,
			"reference", reference,
			"paid_amount", paidAmount,
		)
		return nil
	})
}

// @Summary Cancel Payment
// @Description Void a single open obligation without touching the contract
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.Cancel(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}
