package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/vanroute/vanroute-api/internal/models"
)

// PaymentFSM wraps a payment obligation with its state machine.
// pending ⇄ overdue is time-driven; paid and cancelled are terminal as far
// as scheduling is concerned.
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// pending → overdue (due date passed)
			{Name: "lapse", Src: []string{models.PaymentStatusPending}, Dst: models.PaymentStatusOverdue},

			// overdue → pending (due-day change moved the due date forward)
			{Name: "restore", Src: []string{models.PaymentStatusOverdue}, Dst: models.PaymentStatusPending},

			// pending/overdue → paid
			{Name: "pay", Src: []string{models.PaymentStatusPending, models.PaymentStatusOverdue}, Dst: models.PaymentStatusPaid},

			// pending/overdue → cancelled
			{Name: "cancel", Src: []string{models.PaymentStatusPending, models.PaymentStatusOverdue}, Dst: models.PaymentStatusCancelled},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Pay settles the obligation
func (p *PaymentFSM) Pay(ctx context.Context) error {
	if !p.payment.MayPay() {
		return fmt.Errorf("pagamento não pode ser baixado no estado atual: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "pay"); err != nil {
		return fmt.Errorf("falha ao baixar pagamento: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Cancel voids the obligation
func (p *PaymentFSM) Cancel(ctx context.Context) error {
	if !p.payment.MayCancel() {
		return fmt.Errorf("pagamento não pode ser cancelado no estado atual: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("falha ao cancelar pagamento: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Lapse flips a pending obligation past its due date to overdue
func (p *PaymentFSM) Lapse(ctx context.Context) error {
	if err := p.fsm.Event(ctx, "lapse"); err != nil {
		return fmt.Errorf("falha ao marcar atraso: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Restore brings an overdue obligation back to pending
func (p *PaymentFSM) Restore(ctx context.Context) error {
	if err := p.fsm.Event(ctx, "restore"); err != nil {
		return fmt.Errorf("falha ao restaurar pagamento: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PaymentFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
