package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/vanroute/vanroute-api/internal/models"
)

// ContractFSM wraps a contract with its state machine. Cancelled and
// completed are terminal; suspension is reversible.
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cfsm := &ContractFSM{
		contract: contract,
	}

	cfsm.fsm = fsm.NewFSM(
		contract.Status,
		fsm.Events{
			// active ⇄ suspended
			{Name: "suspend", Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusSuspended},
			{Name: "resume", Src: []string{models.ContractStatusSuspended, models.ContractStatusInactive}, Dst: models.ContractStatusActive},

			// active ⇄ inactive
			{Name: "deactivate", Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusInactive},

			// active/inactive/suspended → cancelled
			{Name: "cancel", Src: []string{models.ContractStatusActive, models.ContractStatusInactive, models.ContractStatusSuspended}, Dst: models.ContractStatusCancelled},

			// active → completed
			{Name: "complete", Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusCompleted},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// eventFor maps a target status to the event that reaches it
var eventFor = map[string]string{
	models.ContractStatusSuspended: "suspend",
	models.ContractStatusActive:    "resume",
	models.ContractStatusInactive:  "deactivate",
	models.ContractStatusCancelled: "cancel",
	models.ContractStatusCompleted: "complete",
}

// TransitionTo moves the contract into the target status, rejecting
// transitions the machine does not allow (including anything out of a
// terminal state).
func (c *ContractFSM) TransitionTo(ctx context.Context, status string) error {
	event, ok := eventFor[status]
	if !ok {
		return fmt.Errorf("status de contrato desconhecido: %s", status)
	}

	if err := c.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("contrato não pode mudar de %s para %s: %w", c.contract.Status, status, err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ContractFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
