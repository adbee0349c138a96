package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanroute/vanroute-api/internal/jobs"
	"github.com/vanroute/vanroute-api/internal/services"
)

// TaskHandler exposes maintenance endpoints for external schedulers. They are
// guarded by the cron secret middleware, not by user auth.
type TaskHandler struct {
	paymentService *services.PaymentService
	worker         *jobs.Worker
}

func NewTaskHandler(paymentService *services.PaymentService, worker *jobs.Worker) *TaskHandler {
	return &TaskHandler{paymentService: paymentService, worker: worker}
}

// @Summary Update Overdue Payments
// @Description Queue a sweep that flips pending obligations past their due date to overdue
// @Tags Tasks
// @Produce json
// @Success 202 {object} map[string]interface{}
// @Router /tasks/update-overdue-payments [post]
func (h *TaskHandler) UpdateOverduePayments(c *gin.Context) {
	// Queued, not run inline: the sweep must outlive the scheduler's request
	// and its result is already logged by the service.
	h.worker.Enqueue(func(ctx context.Context) error {
		_, err := h.paymentService.SweepOverdue(ctx)
		return err
	})
	c.JSON(http.StatusAccepted, gin.H{"message": "Varredura de vencidos enfileirada"})
}

// @Summary Worker Stats
// @Description Background worker queue statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} jobs.WorkerStats
// @Security BearerAuth
// @Router /admin/worker-stats [get]
func (h *TaskHandler) WorkerStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.GetStats())
}
