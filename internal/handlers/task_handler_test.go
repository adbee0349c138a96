package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/vanroute/vanroute-api/internal/billing"
	"github.com/vanroute/vanroute-api/internal/jobs"
	"github.com/vanroute/vanroute-api/internal/repository"
	"github.com/vanroute/vanroute-api/internal/services"
	"github.com/vanroute/vanroute-api/pkg/logger"
)

type sweepRecorder struct {
	repository.PaymentRepository
	swept chan time.Time
}

func (r *sweepRecorder) MarkOverdueDue(ctx context.Context, today time.Time) (int64, error) {
	r.swept <- today
	return 2, nil
}

func TestUpdateOverduePaymentsQueuesSweep(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Setup("test")

	today := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	repo := &sweepRecorder{swept: make(chan time.Time, 1)}
	svc := services.NewPaymentService(repo, nil, billing.FixedClock{Date: today})

	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	h := NewTaskHandler(svc, worker)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/tasks/update-overdue-payments", nil)

	h.UpdateOverduePayments(c)
	assert.Equal(t, http.StatusAccepted, w.Code)

	// The sweep itself runs on the worker pool, after the response
	select {
	case sweptWith := <-repo.swept:
		assert.Equal(t, today, sweptWith)
	case <-time.After(2 * time.Second):
		t.Fatal("queued sweep never reached the repository")
	}
}
