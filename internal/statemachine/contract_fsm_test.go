package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanroute/vanroute-api/internal/models"
)

func contractWithStatus(status string) *models.Contract {
	return &models.Contract{ID: 1, Status: status}
}

func TestContractTransitions(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.ContractStatusActive, models.ContractStatusSuspended, true},
		{models.ContractStatusSuspended, models.ContractStatusActive, true},
		{models.ContractStatusActive, models.ContractStatusInactive, true},
		{models.ContractStatusInactive, models.ContractStatusActive, true},
		{models.ContractStatusActive, models.ContractStatusCancelled, true},
		{models.ContractStatusSuspended, models.ContractStatusCancelled, true},
		{models.ContractStatusActive, models.ContractStatusCompleted, true},

		// Terminal states stay terminal
		{models.ContractStatusCancelled, models.ContractStatusActive, false},
		{models.ContractStatusCompleted, models.ContractStatusActive, false},
		{models.ContractStatusCancelled, models.ContractStatusSuspended, false},

		// Only active contracts complete
		{models.ContractStatusSuspended, models.ContractStatusCompleted, false},
	}

	for _, tc := range cases {
		contract := contractWithStatus(tc.from)
		err := NewContractFSM(contract).TransitionTo(ctx, tc.to)

		if tc.allowed {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, contract.Status)
		} else {
			require.Error(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, contract.Status)
		}
	}
}

func TestContractTransitionToUnknownStatus(t *testing.T) {
	contract := contractWithStatus(models.ContractStatusActive)
	err := NewContractFSM(contract).TransitionTo(context.Background(), "archived")
	assert.Error(t, err)
}
