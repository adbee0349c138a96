package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanroute/vanroute-api/internal/billing"
	"github.com/vanroute/vanroute-api/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func fixedScheduleService(today time.Time) *ScheduleService {
	return NewScheduleService(billing.FixedClock{Date: today})
}

func baseContract() *models.Contract {
	end := date(2025, time.March, 10)
	return &models.Contract{
		ID:            1,
		OwnerID:       1,
		StartDate:     date(2025, time.January, 15),
		EndDate:       &end,
		MonthlyAmount: decimal.NewFromFloat(150.50),
		DueDay:        5,
		Status:        models.ContractStatusActive,
	}
}

func TestGenerateScheduleProducesOnePaymentPerMonth(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	payments, err := svc.GenerateSchedule(baseContract())
	require.NoError(t, err)
	require.Len(t, payments, 3)

	assert.Equal(t, "2025-01", payments[0].MonthRef().String())
	assert.Equal(t, "2025-02", payments[1].MonthRef().String())
	assert.Equal(t, "2025-03", payments[2].MonthRef().String())

	assert.Equal(t, date(2025, time.January, 5), payments[0].DueDate)
	assert.Equal(t, date(2025, time.February, 5), payments[1].DueDate)
	assert.Equal(t, date(2025, time.March, 5), payments[2].DueDate)

	for _, p := range payments {
		assert.True(t, decimal.NewFromFloat(150.50).Equal(p.Amount))
		assert.Equal(t, uint(1), p.ContractID)
	}

	// January's due date already passed, the rest are in the future
	assert.Equal(t, models.PaymentStatusOverdue, payments[0].Status)
	assert.Equal(t, models.PaymentStatusPending, payments[1].Status)
	assert.Equal(t, models.PaymentStatusPending, payments[2].Status)
}

func TestGenerateScheduleOpenEndedBillsThroughDecember(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.March, 1))

	contract := baseContract()
	contract.StartDate = date(2025, time.March, 10)
	contract.EndDate = nil

	payments, err := svc.GenerateSchedule(contract)
	require.NoError(t, err)
	require.Len(t, payments, 10)

	assert.Equal(t, "2025-03", payments[0].MonthRef().String())
	assert.Equal(t, "2025-12", payments[9].MonthRef().String())
}

func TestGenerateScheduleSingleMonth(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.January, 1))

	end := date(2025, time.June, 20)
	contract := baseContract()
	contract.StartDate = date(2025, time.June, 1)
	contract.EndDate = &end

	payments, err := svc.GenerateSchedule(contract)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "2025-06", payments[0].MonthRef().String())
}

func TestGenerateScheduleClampsDueDayToShortMonths(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.January, 1))

	end := date(2025, time.April, 30)
	contract := baseContract()
	contract.StartDate = date(2025, time.January, 1)
	contract.EndDate = &end
	contract.DueDay = 31

	payments, err := svc.GenerateSchedule(contract)
	require.NoError(t, err)
	require.Len(t, payments, 4)

	assert.Equal(t, date(2025, time.January, 31), payments[0].DueDate)
	assert.Equal(t, date(2025, time.February, 28), payments[1].DueDate)
	assert.Equal(t, date(2025, time.March, 31), payments[2].DueDate)
	assert.Equal(t, date(2025, time.April, 30), payments[3].DueDate)
}

func TestGenerateScheduleDueDateOnTodayIsPending(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.January, 5))

	payments, err := svc.GenerateSchedule(baseContract())
	require.NoError(t, err)

	// Due exactly today is not yet overdue
	assert.Equal(t, models.PaymentStatusPending, payments[0].Status)
}

func TestGenerateScheduleRejectsInvalidDueDay(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.January, 1))

	for _, day := range []int{0, -1, 32} {
		contract := baseContract()
		contract.DueDay = day

		_, err := svc.GenerateSchedule(contract)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDueDay))

		var dueDayErr *InvalidDueDayError
		require.True(t, errors.As(err, &dueDayErr))
		assert.Equal(t, day, dueDayErr.Day)
	}
}

func TestGenerateScheduleRejectsEndBeforeStart(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.January, 1))

	end := date(2024, time.December, 31)
	contract := baseContract()
	contract.EndDate = &end

	_, err := svc.GenerateSchedule(contract)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDateRange))
}

func openPaymentsFor(t *testing.T, svc *ScheduleService, contract *models.Contract) []models.Payment {
	t.Helper()
	payments, err := svc.GenerateSchedule(contract)
	require.NoError(t, err)
	return payments
}

func TestReconcileNoChangesIsEmpty(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()
	after := *before
	open := openPaymentsFor(t, svc, before)

	diff, err := svc.Reconcile(before, &after, open)
	require.NoError(t, err)
	assert.True(t, diff.Empty())
}

func TestReconcileShrinkDeletesOutOfRangeMonths(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()
	open := openPaymentsFor(t, svc, before)

	after := *before
	newEnd := date(2025, time.January, 31)
	after.EndDate = &newEnd

	diff, err := svc.Reconcile(before, &after, open)
	require.NoError(t, err)

	require.Len(t, diff.ToDelete, 2)
	assert.Equal(t, "2025-02", diff.ToDelete[0].MonthRef().String())
	assert.Equal(t, "2025-03", diff.ToDelete[1].MonthRef().String())
	assert.Empty(t, diff.ToInsert)
	assert.Empty(t, diff.ToCancel)
	assert.Empty(t, diff.ToUpdate)
}

func TestReconcileExtendFillsGapWithCurrentTerms(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()
	open := openPaymentsFor(t, svc, before)

	after := *before
	newEnd := date(2025, time.May, 15)
	after.EndDate = &newEnd
	after.MonthlyAmount = decimal.NewFromFloat(175.00)

	diff, err := svc.Reconcile(before, &after, open)
	require.NoError(t, err)

	require.Len(t, diff.ToInsert, 2)
	assert.Equal(t, "2025-04", diff.ToInsert[0].MonthRef().String())
	assert.Equal(t, "2025-05", diff.ToInsert[1].MonthRef().String())
	for _, p := range diff.ToInsert {
		assert.True(t, decimal.NewFromFloat(175.00).Equal(p.Amount))
		assert.Equal(t, models.PaymentStatusPending, p.Status)
	}

	// Retained months pick up the new amount too
	require.Len(t, diff.ToUpdate, 3)
	for _, p := range diff.ToUpdate {
		assert.True(t, decimal.NewFromFloat(175.00).Equal(p.Amount))
	}
}

func TestReconcileAmountChangeDoesNotTouchDueDates(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()
	open := openPaymentsFor(t, svc, before)

	after := *before
	after.MonthlyAmount = decimal.NewFromFloat(200.00)

	diff, err := svc.Reconcile(before, &after, open)
	require.NoError(t, err)

	require.Len(t, diff.ToUpdate, 3)
	assert.Equal(t, date(2025, time.January, 5), diff.ToUpdate[0].DueDate)
	// Overdue stays overdue: only a due-day change re-derives status
	assert.Equal(t, models.PaymentStatusOverdue, diff.ToUpdate[0].Status)
	assert.Empty(t, diff.ToInsert)
	assert.Empty(t, diff.ToDelete)
}

func TestReconcileDueDayChangeReclampsAndRederives(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()
	open := openPaymentsFor(t, svc, before)

	after := *before
	after.DueDay = 30

	diff, err := svc.Reconcile(before, &after, open)
	require.NoError(t, err)

	require.Len(t, diff.ToUpdate, 3)
	assert.Equal(t, date(2025, time.January, 30), diff.ToUpdate[0].DueDate)
	// February has no 30th in 2025
	assert.Equal(t, date(2025, time.February, 28), diff.ToUpdate[1].DueDate)
	assert.Equal(t, date(2025, time.March, 30), diff.ToUpdate[2].DueDate)

	// January stays overdue under the new due date, the rest stay pending
	assert.Equal(t, models.PaymentStatusOverdue, diff.ToUpdate[0].Status)
	assert.Equal(t, models.PaymentStatusPending, diff.ToUpdate[1].Status)
}

func TestReconcileDueDayChangeDemotesOverdueToPending(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.January, 10))

	before := baseContract()
	open := openPaymentsFor(t, svc, before)
	require.Equal(t, models.PaymentStatusOverdue, open[0].Status)

	// Moving the due day past today makes January's obligation pending again
	after := *before
	after.DueDay = 20

	diff, err := svc.Reconcile(before, &after, open)
	require.NoError(t, err)

	require.Len(t, diff.ToUpdate, 3)
	assert.Equal(t, date(2025, time.January, 20), diff.ToUpdate[0].DueDate)
	assert.Equal(t, models.PaymentStatusPending, diff.ToUpdate[0].Status)
}

func TestReconcileTerminalTransitionCancelsAllOpen(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()
	open := openPaymentsFor(t, svc, before)

	for _, status := range []string{models.ContractStatusCancelled, models.ContractStatusSuspended} {
		after := *before
		after.Status = status

		diff, err := svc.Reconcile(before, &after, open)
		require.NoError(t, err)

		require.Len(t, diff.ToCancel, 3)
		for _, p := range diff.ToCancel {
			assert.Equal(t, models.PaymentStatusCancelled, p.Status)
		}
		assert.Empty(t, diff.ToInsert)
		assert.Empty(t, diff.ToDelete)
		assert.Empty(t, diff.ToUpdate)
	}
}

func TestReconcileAlreadyTerminalDoesNothing(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()
	before.Status = models.ContractStatusSuspended
	after := *before
	after.MonthlyAmount = decimal.NewFromFloat(300.00)

	diff, err := svc.Reconcile(before, &after, nil)
	require.NoError(t, err)
	assert.True(t, diff.Empty())
}

func TestReconcileDoesNotRegenerateSettledMonths(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()
	all := openPaymentsFor(t, svc, before)

	// February was settled: it no longer appears in the open set
	open := []models.Payment{all[0], all[2]}

	after := *before
	newEnd := date(2025, time.April, 30)
	after.EndDate = &newEnd

	diff, err := svc.Reconcile(before, &after, open)
	require.NoError(t, err)

	// Gap fill starts after the last retained month (March); the settled
	// February must not come back
	require.Len(t, diff.ToInsert, 1)
	assert.Equal(t, "2025-04", diff.ToInsert[0].MonthRef().String())
}

func TestReconcileAllSettledRegeneratesWholeRange(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()

	// Every obligation settled: open set is empty, gap fill starts at the
	// start month and regenerates the whole range with current terms
	after := *before
	after.MonthlyAmount = decimal.NewFromFloat(160.00)

	diff, err := svc.Reconcile(before, &after, nil)
	require.NoError(t, err)
	require.Len(t, diff.ToInsert, 3)
	assert.Equal(t, "2025-01", diff.ToInsert[0].MonthRef().String())
}

func TestReconcileRejectsInvalidTerms(t *testing.T) {
	svc := fixedScheduleService(date(2025, time.February, 1))

	before := baseContract()

	after := *before
	after.DueDay = 0
	_, err := svc.Reconcile(before, &after, nil)
	assert.True(t, errors.Is(err, ErrInvalidDueDay))

	after = *before
	badEnd := date(2024, time.June, 1)
	after.EndDate = &badEnd
	_, err = svc.Reconcile(before, &after, nil)
	assert.True(t, errors.Is(err, ErrInvalidDateRange))
}

func TestNeedsReconcile(t *testing.T) {
	before := baseContract()

	same := *before
	assert.False(t, NeedsReconcile(before, &same))

	amount := *before
	amount.MonthlyAmount = decimal.NewFromFloat(99.99)
	assert.True(t, NeedsReconcile(before, &amount))

	dueDay := *before
	dueDay.DueDay = 10
	assert.True(t, NeedsReconcile(before, &dueDay))

	status := *before
	status.Status = models.ContractStatusSuspended
	assert.True(t, NeedsReconcile(before, &status))

	cleared := *before
	cleared.EndDate = nil
	assert.True(t, NeedsReconcile(before, &cleared))

	moved := *before
	newEnd := date(2025, time.April, 1)
	moved.EndDate = &newEnd
	assert.True(t, NeedsReconcile(before, &moved))

	notes := *before
	other := "observação"
	notes.Notes = &other
	assert.False(t, NeedsReconcile(before, &notes))
}
