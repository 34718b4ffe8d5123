/*
aggregate.go - Financial summary and merged transaction feed

PURPOSE:
  Read-only component answering the dashboard/report queries: the financial
  summary (balance, totals, paid/pending partition) and the merged, time
  ordered recent-transactions feed.

NO CACHING:
  Every call recomputes from current Repository state. Aggregation is never
  incrementally maintained, so it cannot drift from the ledger after a
  mutation; reads are read-committed with respect to concurrent writes.

THE EXIT-COUNTS-ONCE RULE:
  An exit contributes its FULL amount to totalExits regardless of any
  installment plan: the plan's installments sum to the exit total by
  invariant, so installments are a payment-scheduling view of the same
  money, never an additional expense.

SEE ALSO:
  - status.go:  Paid/pending partition uses the derived status
  - ledger.go:  The write side
*/
package ledger

import (
	"context"
	"sort"
)

// Aggregator computes read-only views over the Ledger's current state.
type Aggregator struct {
	repo Repository
}

// NewAggregator creates an Aggregator over the given Repository.
func NewAggregator(repo Repository) *Aggregator {
	return &Aggregator{repo: repo}
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the financial overview as of a reference day.
// Invariants: Balance == TotalEntries - TotalExits, and
// TotalPaid + TotalPending == TotalInstallmentPlanned.
type Summary struct {
	AsOf                    Date
	Balance                 Money
	TotalEntries            Money
	TotalExits              Money
	TotalInstallmentPlanned Money
	TotalPaid               Money
	TotalPending            Money
}

// Summary computes the financial summary with today = asOf. The paid/pending
// split partitions the planned installment total by each installment's
// derived status: PAID goes to TotalPaid, OVERDUE and UPCOMING to
// TotalPending.
func (a *Aggregator) Summary(ctx context.Context, asOf Date) (Summary, error) {
	entries, err := a.repo.Entries(ctx)
	if err != nil {
		return Summary{}, err
	}
	exits, err := a.repo.Exits(ctx)
	if err != nil {
		return Summary{}, err
	}
	installments, err := a.repo.Installments(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{AsOf: asOf}
	for _, e := range entries {
		s.TotalEntries = s.TotalEntries.Add(e.Amount)
	}
	for _, x := range exits {
		s.TotalExits = s.TotalExits.Add(x.TotalAmount)
	}
	for _, inst := range installments {
		s.TotalInstallmentPlanned = s.TotalInstallmentPlanned.Add(inst.Amount)
		if StatusOf(inst, asOf) == StatusPaid {
			s.TotalPaid = s.TotalPaid.Add(inst.Amount)
		} else {
			s.TotalPending = s.TotalPending.Add(inst.Amount)
		}
	}
	s.Balance = s.TotalEntries.Sub(s.TotalExits)
	return s, nil
}

// =============================================================================
// RECENT TRANSACTIONS
// =============================================================================

// RecentTransactions merges entries (tagged income, dated by reference date)
// and exits (tagged expense, dated by exit date) into one feed: date
// descending, ties broken by id descending, truncated to limit. Rows dated
// after asOf are excluded. The ordering is fully deterministic; the id tie
// break exists so that two same-day transactions always render in the same
// order.
func (a *Aggregator) RecentTransactions(ctx context.Context, limit int, asOf Date) ([]TransactionView, error) {
	if limit < 0 {
		return nil, &ValidationError{Field: "limit", Reason: "must be >= 0"}
	}

	entries, err := a.repo.Entries(ctx)
	if err != nil {
		return nil, err
	}
	exits, err := a.repo.Exits(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TransactionView, 0, len(entries)+len(exits))
	for _, e := range entries {
		if e.ReferenceDate.After(asOf) {
			continue
		}
		views = append(views, TransactionView{
			ID:           string(e.ID),
			Kind:         KindIncome,
			Date:         e.ReferenceDate,
			Amount:       e.Amount,
			Counterparty: e.PayingParty,
		})
	}
	for _, x := range exits {
		if x.ExitDate.After(asOf) {
			continue
		}
		views = append(views, TransactionView{
			ID:           string(x.ID),
			Kind:         KindExpense,
			Date:         x.ExitDate,
			Amount:       x.TotalAmount,
			Counterparty: x.Payee,
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].Date.Equal(views[j].Date) {
			return views[i].Date.After(views[j].Date)
		}
		return views[i].ID > views[j].ID
	})

	if limit < len(views) {
		views = views[:limit]
	}
	return views, nil
}
