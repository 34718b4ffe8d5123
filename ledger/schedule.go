/*
schedule.go - Installment schedule generation

PURPOSE:
  Turns (total amount, installment count, first due date) into an ordered
  list of installment specs. Pure function: no ids, no persistence, no clock.

THE TWO INVARIANTS:
  1. Exact sum: the generated amounts sum back to the total EXACTLY. No cent
     is lost or gained to rounding. Every amount is within one minor unit of
     total/count (see Money.Split).
  2. Calendar months: due date i is the first due date advanced by i calendar
     months; when the anchor day-of-month does not exist in a target month
     (day 31 into a 30-day month), it clamps to that month's last day. The
     clamp never sticks: Jan 31 -> Feb 28 -> Mar 31 (see Date.AddMonths).

SEE ALSO:
  - money.go: Split implements the remainder distribution rule
  - ledger.go: CreateExit invokes Generate for installment exits
*/
package ledger

import "fmt"

// InstallmentSpec is one generated installment before it is given an id and
// attached to a plan.
type InstallmentSpec struct {
	Sequence int // 1..count
	DueDate  Date
	Amount   Money
}

// GenerateSchedule produces count installment specs for the given total.
//
// Amounts: every installment gets floor(total/count); the remainder is
// distributed one minor unit each to the last installments, so the schedule
// sums to total exactly and no installment is negative or fractional.
//
// Due dates: installment i (0-based) is due firstDue advanced by i calendar
// months, with end-of-month clamping.
//
// A count of 1 degenerates to a single installment of the full total due on
// firstDue. Invalid input (count < 1, non-positive total, zero date) is
// rejected with ErrInvalidSchedule.
func GenerateSchedule(total Money, count int, firstDue Date) ([]InstallmentSpec, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count %d, must be >= 1", ErrInvalidSchedule, count)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total %s, must be positive", ErrInvalidSchedule, total)
	}
	if firstDue.IsZero() {
		return nil, fmt.Errorf("%w: first due date is zero", ErrInvalidSchedule)
	}

	amounts := total.Split(count)
	specs := make([]InstallmentSpec, count)
	for i := range specs {
		specs[i] = InstallmentSpec{
			Sequence: i + 1,
			DueDate:  firstDue.AddMonths(i),
			Amount:   amounts[i],
		}
	}
	return specs, nil
}
