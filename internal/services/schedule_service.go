package services

import (
	"sort"
	"time"

	"github.com/vanroute/vanroute-api/internal/billing"
	"github.com/vanroute/vanroute-api/internal/models"
)

// ScheduleService derives monthly payment obligations from a contract and
// reconciles the persisted schedule after contract mutations. It is pure
// decision logic: it never touches the database, returning drafts and diffs
// for the contract service to persist atomically.
type ScheduleService struct {
	clock billing.Clock
}

// NewScheduleService creates a schedule service using the given clock
func NewScheduleService(clock billing.Clock) *ScheduleService {
	return &ScheduleService{clock: clock}
}

// GenerateSchedule produces one obligation per calendar month from the
// contract's start month through its effective end month, in chronological
// order. Open-ended contracts bill through December 31 of the start year.
func (s *ScheduleService) GenerateSchedule(contract *models.Contract) ([]models.Payment, error) {
	if contract.DueDay < 1 || contract.DueDay > 31 {
		return nil, &InvalidDueDayError{Day: contract.DueDay}
	}

	end := contract.EffectiveEnd()
	if end.Before(contract.StartDate) {
		return nil, &InvalidDateRangeError{Start: contract.StartDate, End: end}
	}

	today := s.clock.Today()
	var payments []models.Payment

	for ref := contract.StartMonth(); !ref.FirstDay().After(end); ref = ref.Next() {
		payments = append(payments, s.draft(contract.ID, ref, contract, today))
	}

	return payments, nil
}

// ScheduleDiff is the minimal set of writes that converges the persisted
// schedule with the one implied by the contract's current terms.
type ScheduleDiff struct {
	ToCancel []models.Payment
	ToDelete []models.Payment
	ToUpdate []models.Payment
	ToInsert []models.Payment
}

// Empty returns true when reconciliation found nothing to change
func (d *ScheduleDiff) Empty() bool {
	return len(d.ToCancel) == 0 && len(d.ToDelete) == 0 &&
		len(d.ToUpdate) == 0 && len(d.ToInsert) == 0
}

// Reconcile compares the open obligations of a contract against the schedule
// its mutated terms imply. Settled and cancelled obligations never appear in
// the input and are never touched. The rules apply in order:
//
//  1. A transition into cancelled/suspended cancels every open obligation and
//     generates nothing.
//  2. Open obligations whose reference month falls past the new effective end
//     are deleted; the rest are retained.
//  3. An amount change overwrites the retained obligations' nominal amount; a
//     due-day change recomputes their due dates with month-end clamping and
//     re-derives pending/overdue from the new due date.
//  4. Months missing between the last retained obligation (or the start
//     month) and the effective end are generated with the current terms.
func (s *ScheduleService) Reconcile(before, after *models.Contract, open []models.Payment) (*ScheduleDiff, error) {
	diff := &ScheduleDiff{}

	// Rule 1: terminal transition stops billing outright.
	if after.IsTerminal() && !before.IsTerminal() {
		for _, p := range open {
			p.Status = models.PaymentStatusCancelled
			diff.ToCancel = append(diff.ToCancel, p)
		}
		return diff, nil
	}
	if after.IsTerminal() {
		return diff, nil
	}

	if after.DueDay < 1 || after.DueDay > 31 {
		return nil, &InvalidDueDayError{Day: after.DueDay}
	}

	end := after.EffectiveEnd()
	if end.Before(after.StartDate) {
		return nil, &InvalidDateRangeError{Start: after.StartDate, End: end}
	}

	today := s.clock.Today()
	amountChanged := !before.MonthlyAmount.Equal(after.MonthlyAmount)
	dueDayChanged := before.DueDay != after.DueDay

	// Rule 2: retain in-range obligations, delete the ones the shortened
	// contract no longer covers.
	var retained []models.Payment
	for _, p := range open {
		if p.MonthRef().FirstDay().After(end) {
			diff.ToDelete = append(diff.ToDelete, p)
			continue
		}
		retained = append(retained, p)
	}

	// Rule 3: propagate the new amount and due day onto retained obligations.
	if amountChanged || dueDayChanged {
		for i := range retained {
			if amountChanged {
				retained[i].Amount = after.MonthlyAmount
			}
			if dueDayChanged {
				retained[i].DueDate = billing.DueDateIn(retained[i].MonthRef(), after.DueDay)
				// Re-derivation can demote overdue back to pending when the
				// new due date lands in the future.
				retained[i].Status = models.StatusFor(retained[i].DueDate, today)
			}
			diff.ToUpdate = append(diff.ToUpdate, retained[i])
		}
	}

	// Rule 4: fill the gap from the month after the last retained obligation
	// (or from the start month when none remain) to the effective end.
	next := after.StartMonth()
	if len(retained) > 0 {
		sort.Slice(retained, func(i, j int) bool {
			return retained[i].MonthRef().Before(retained[j].MonthRef())
		})
		next = retained[len(retained)-1].MonthRef().Next()
	}

	covered := make(map[billing.MonthRef]bool, len(retained))
	for _, p := range retained {
		covered[p.MonthRef()] = true
	}

	for ref := next; !ref.FirstDay().After(end); ref = ref.Next() {
		if covered[ref] {
			continue
		}
		diff.ToInsert = append(diff.ToInsert, s.draft(after.ID, ref, after, today))
	}

	return diff, nil
}

// NeedsReconcile reports whether a contract mutation touched a field the
// schedule depends on.
func NeedsReconcile(before, after *models.Contract) bool {
	beforeEnd, afterEnd := before.EndDate, after.EndDate
	endChanged := (beforeEnd == nil) != (afterEnd == nil) ||
		(beforeEnd != nil && afterEnd != nil && !beforeEnd.Equal(*afterEnd))

	return endChanged ||
		!before.MonthlyAmount.Equal(after.MonthlyAmount) ||
		before.DueDay != after.DueDay ||
		before.Status != after.Status
}

func (s *ScheduleService) draft(contractID uint, ref billing.MonthRef, c *models.Contract, today time.Time) models.Payment {
	dueDate := billing.DueDateIn(ref, c.DueDay)
	return models.Payment{
		ContractID:     contractID,
		ReferenceYear:  ref.Year,
		ReferenceMonth: int(ref.Month),
		DueDate:        dueDate,
		Amount:         c.MonthlyAmount,
		Status:         models.StatusFor(dueDate, today),
	}
}
