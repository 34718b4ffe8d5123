package ledger

// =============================================================================
// INSTALLMENT STATUS - Derived at read time, never stored
// =============================================================================

// Status classifies an installment relative to a reference day.
type Status string

const (
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusUpcoming Status = "upcoming"
)

// ResolveStatus derives an installment's status from its due date, optional
// paid date, and "today". Pure 3-state classifier:
//
//   - paid date set        -> PAID (even if it was paid late)
//   - unpaid, due < today  -> OVERDUE
//   - otherwise            -> UPCOMING (due today is still upcoming)
//
// Status is recomputed from data on every read rather than cached in a
// stored field, so it can never go stale as time passes. The only real
// transition is the one-way mark-paid mutation in ledger.go; there is no
// unpay operation.
func ResolveStatus(dueDate Date, paidDate *Date, today Date) Status {
	if paidDate != nil {
		return StatusPaid
	}
	if dueDate.Before(today) {
		return StatusOverdue
	}
	return StatusUpcoming
}

// StatusOf is ResolveStatus applied to an installment record.
func StatusOf(inst Installment, today Date) Status {
	return ResolveStatus(inst.DueDate, inst.PaidDate, today)
}
