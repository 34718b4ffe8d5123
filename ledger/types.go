/*
Package ledger is the household installment & ledger aggregation engine.

PURPOSE:
  Tracks a household's financial entries (income) and exits (expenses),
  generates installment schedules for exits paid over time, derives each
  installment's payment status from the calendar, and aggregates everything
  into a financial summary and a merged transaction feed.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: A recorded inflow of money (immutable once created)
  - Exit: A recorded outflow, cash or split into installments
  - LineItem: One product line of an exit (quantity x unit price)
  - InstallmentPlan / Installment: The payment-scheduling view of an exit
  - TransactionView: One row of the merged income/expense feed

DESIGN PRINCIPLES:
  1. Exactness: all amounts are Money (integer minor units); an exit's total
     always equals the sum of its line items, and a plan's installments always
     sum back to the plan total.
  2. Derived status: an installment's PAID/OVERDUE/UPCOMING status is computed
     from (dueDate, paidDate, today) on every read, never stored (status.go).
  3. Foreign ids only: user/company/product ids reference external catalogs;
     the engine stores ids and resolves names at presentation time.

SEE ALSO:
  - schedule.go: Installment schedule generation
  - ledger.go:   Mutation surface and invariant enforcement
  - aggregate.go: Summary and recent-transactions feed
*/
package ledger

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	EntryID       string
	ExitID        string
	PlanID        string
	InstallmentID string

	// Foreign keys into external catalogs. Not owned by the engine.
	UserID    string
	CompanyID string
	ProductID string
)

// =============================================================================
// ENTRY - Income record (immutable)
// =============================================================================

// Entry is a recorded inflow of money to the household. Entries are never
// updated or deleted once created.
type Entry struct {
	ID            EntryID
	RecordedBy    UserID
	Beneficiary   UserID
	ReferenceDate Date
	Amount        Money
	PayingParty   CompanyID
	RegisteredAt  time.Time
}

// =============================================================================
// EXIT - Expense record, cash or installment
// =============================================================================

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentInstallment PaymentMethod = "installment"
)

// LineItem is one product line of an exit.
// LineTotal is always Quantity * UnitPrice, computed by the engine.
type LineItem struct {
	Product   ProductID
	Quantity  int
	UnitPrice Money
	LineTotal Money
}

// MaxLineItemQuantity bounds a single line's quantity (business rule).
const MaxLineItemQuantity = 20

// Exit is a recorded outflow of money. TotalAmount is always the sum of the
// line totals; the engine never trusts a client-supplied total. An exit with
// PaymentInstallment owns exactly one InstallmentPlan (PlanID set).
type Exit struct {
	ID             ExitID
	RecordedBy     UserID
	ExitDate       Date
	Payee          CompanyID
	PaymentMethod  PaymentMethod
	Responsible    []UserID
	LineItems      []LineItem
	TotalAmount    Money
	Note           string
	RegisteredAt   time.Time
	PlanID         PlanID // empty unless PaymentMethod == PaymentInstallment
	IdempotencyKey string // optional client-supplied dedup token
}

// =============================================================================
// INSTALLMENT PLAN - One exit's total split over N due dates
// =============================================================================

// InstallmentPlan groups an exit's total into N installments.
// Invariant: the plan's installment amounts sum to TotalAmount exactly.
type InstallmentPlan struct {
	ID           PlanID
	ExitID       ExitID
	TotalAmount  Money
	Count        int
	FirstDueDate Date
}

// Installment is one scheduled partial payment of a plan. PaidDate is the
// only mutable field; it is set once by the mark-paid operation and never
// cleared. Status is NOT stored here - see status.go.
type Installment struct {
	ID       InstallmentID
	PlanID   PlanID
	Sequence int // 1..Count
	DueDate  Date
	Amount   Money
	PaidDate *Date
}

// Paid reports whether the installment has been marked paid.
func (i Installment) Paid() bool { return i.PaidDate != nil }

// =============================================================================
// TRANSACTION VIEW - Merged income/expense feed row
// =============================================================================

type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// TransactionView is one row of the merged recent-transactions feed.
// Income rows are dated by the entry's reference date and carry the paying
// party; expense rows are dated by the exit date and carry the payee.
type TransactionView struct {
	ID           string // underlying EntryID or ExitID
	Kind         TransactionKind
	Date         Date
	Amount       Money
	Counterparty CompanyID
}

// =============================================================================
// CATALOG RECORDS - External collaborators, ids referenced by the engine
// =============================================================================

type User struct {
	ID   UserID
	Name string
}

type Company struct {
	ID   CompanyID
	Name string
}

type Product struct {
	ID   ProductID
	Name string
	// ReferencePrice is the catalog's suggested unit price; line items carry
	// the actual price paid and may differ.
	ReferencePrice Money
}
