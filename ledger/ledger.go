/*
ledger.go - Mutation surface and invariant enforcement

PURPOSE:
  The Ledger owns every write: create an income entry, create an exit
  (possibly generating an installment schedule), mark an installment paid.
  It validates input fully before touching the Repository, computes totals
  itself (never trusting a client-supplied total), and delegates atomicity
  of multi-record writes to the Repository.

REQUEST FLOW (CreateExit):
  1. Validate shape: responsible users non-empty, line items non-empty,
     quantities and prices positive, installment config sane
  2. Validate references: payee / users / products exist in the Catalog
  3. Compute line totals and the exit total in Money arithmetic
  4. If installment: GenerateSchedule and materialize the plan
  5. One atomic SaveExit - all records or none

CONCURRENCY:
  Each operation runs to completion with no internal suspension other than
  its Repository calls; there is no shared mutable state in here. The race
  between two mark-paid calls is settled by the Repository's check-then-set.

SEE ALSO:
  - schedule.go:   Schedule generation invoked for installment exits
  - repository.go: The collaborator contracts
  - aggregate.go:  The read side
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger is the engine's mutation surface. Construct with NewLedger and pass
// the dependencies explicitly; there is no package-level instance.
type Ledger struct {
	repo    Repository
	catalog Catalog

	// now is swappable for tests.
	now func() time.Time
}

// NewLedger creates a Ledger over the given collaborators.
func NewLedger(repo Repository, catalog Catalog) *Ledger {
	return &Ledger{
		repo:    repo,
		catalog: catalog,
		now:     time.Now,
	}
}

// =============================================================================
// INPUTS
// =============================================================================

// EntryInput is the payload for creating an income entry.
type EntryInput struct {
	RecordedBy    UserID
	Beneficiary   UserID
	ReferenceDate Date
	Amount        Money
	PayingParty   CompanyID
}

// LineItemInput is one purchase line before totals are computed.
type LineItemInput struct {
	Product   ProductID
	Quantity  int
	UnitPrice Money
}

// InstallmentConfig configures the payment plan of an installment exit.
type InstallmentConfig struct {
	Count        int
	FirstDueDate Date
}

// ExitInput is the payload for creating an exit.
type ExitInput struct {
	RecordedBy    UserID
	ExitDate      Date
	Payee         CompanyID
	PaymentMethod PaymentMethod
	Responsible   []UserID
	LineItems     []LineItemInput
	Note          string

	// Installments must be set iff PaymentMethod is PaymentInstallment.
	Installments *InstallmentConfig

	// IdempotencyKey, when non-empty, lets the store reject an accidental
	// double submission (user double-clicking register) as a conflict.
	IdempotencyKey string
}

// =============================================================================
// CREATE ENTRY
// =============================================================================

// CreateEntry validates and persists a new income entry.
func (l *Ledger) CreateEntry(ctx context.Context, in EntryInput) (Entry, error) {
	if !in.Amount.IsPositive() {
		return Entry{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if in.ReferenceDate.IsZero() {
		return Entry{}, &ValidationError{Field: "reference_date", Reason: "required"}
	}
	if err := l.requireUser(ctx, "recorded_by", in.RecordedBy); err != nil {
		return Entry{}, err
	}
	if err := l.requireUser(ctx, "beneficiary", in.Beneficiary); err != nil {
		return Entry{}, err
	}
	if err := l.requireCompany(ctx, "paying_party", in.PayingParty); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:            EntryID(uuid.New().String()),
		RecordedBy:    in.RecordedBy,
		Beneficiary:   in.Beneficiary,
		ReferenceDate: in.ReferenceDate,
		Amount:        in.Amount,
		PayingParty:   in.PayingParty,
		RegisteredAt:  l.now().UTC(),
	}

	if err := l.repo.SaveEntry(ctx, entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// =============================================================================
// CREATE EXIT
// =============================================================================

// CreateExit validates and persists a new exit. For installment exits the
// plan and all installments are created atomically with the exit; the
// generated installments are returned alongside it.
func (l *Ledger) CreateExit(ctx context.Context, in ExitInput) (Exit, []Installment, error) {
	if err := l.validateExitShape(in); err != nil {
		return Exit{}, nil, err
	}
	if err := l.requireUser(ctx, "recorded_by", in.RecordedBy); err != nil {
		return Exit{}, nil, err
	}
	for _, uid := range in.Responsible {
		if err := l.requireUser(ctx, "responsible", uid); err != nil {
			return Exit{}, nil, err
		}
	}
	if err := l.requireCompany(ctx, "payee", in.Payee); err != nil {
		return Exit{}, nil, err
	}
	for _, li := range in.LineItems {
		if _, err := l.catalog.Product(ctx, li.Product); err != nil {
			if errors.Is(err, ErrNotFound) {
				return Exit{}, nil, &NotFoundError{Kind: "product", ID: string(li.Product)}
			}
			return Exit{}, nil, err
		}
	}

	// Totals are always computed here, in Money arithmetic.
	items := make([]LineItem, len(in.LineItems))
	var total Money
	for i, li := range in.LineItems {
		lineTotal := li.UnitPrice.MulInt(int64(li.Quantity))
		items[i] = LineItem{
			Product:   li.Product,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			LineTotal: lineTotal,
		}
		total = total.Add(lineTotal)
	}

	exit := Exit{
		ID:             ExitID(uuid.New().String()),
		RecordedBy:     in.RecordedBy,
		ExitDate:       in.ExitDate,
		Payee:          in.Payee,
		PaymentMethod:  in.PaymentMethod,
		Responsible:    append([]UserID(nil), in.Responsible...),
		LineItems:      items,
		TotalAmount:    total,
		Note:           in.Note,
		RegisteredAt:   l.now().UTC(),
		IdempotencyKey: in.IdempotencyKey,
	}

	var plan *InstallmentPlan
	var installments []Installment
	if in.PaymentMethod == PaymentInstallment {
		specs, err := GenerateSchedule(total, in.Installments.Count, in.Installments.FirstDueDate)
		if err != nil {
			return Exit{}, nil, err
		}

		planID := PlanID(uuid.New().String())
		exit.PlanID = planID
		plan = &InstallmentPlan{
			ID:           planID,
			ExitID:       exit.ID,
			TotalAmount:  total,
			Count:        in.Installments.Count,
			FirstDueDate: in.Installments.FirstDueDate,
		}
		installments = make([]Installment, len(specs))
		for i, spec := range specs {
			installments[i] = Installment{
				ID:       InstallmentID(uuid.New().String()),
				PlanID:   planID,
				Sequence: spec.Sequence,
				DueDate:  spec.DueDate,
				Amount:   spec.Amount,
			}
		}
	}

	if err := l.repo.SaveExit(ctx, exit, plan, installments); err != nil {
		return Exit{}, nil, err
	}
	return exit, installments, nil
}

func (l *Ledger) validateExitShape(in ExitInput) error {
	if in.ExitDate.IsZero() {
		return &ValidationError{Field: "exit_date", Reason: "required"}
	}
	if len(in.Responsible) == 0 {
		return &ValidationError{Field: "responsible", Reason: "at least one responsible user required"}
	}
	if len(in.LineItems) == 0 {
		return &ValidationError{Field: "line_items", Reason: "at least one line item required"}
	}
	for i, li := range in.LineItems {
		if li.Quantity < 1 || li.Quantity > MaxLineItemQuantity {
			return &ValidationError{
				Field:  fmt.Sprintf("line_items[%d].quantity", i),
				Reason: fmt.Sprintf("must be between 1 and %d", MaxLineItemQuantity),
			}
		}
		if !li.UnitPrice.IsPositive() {
			return &ValidationError{
				Field:  fmt.Sprintf("line_items[%d].unit_price", i),
				Reason: "must be positive",
			}
		}
	}

	switch in.PaymentMethod {
	case PaymentCash:
		if in.Installments != nil {
			return &ValidationError{Field: "installments", Reason: "not allowed for cash exits"}
		}
	case PaymentInstallment:
		if in.Installments == nil {
			return &ValidationError{Field: "installments", Reason: "required for installment exits"}
		}
		if in.Installments.Count < 1 {
			return &ValidationError{Field: "installments.count", Reason: "must be >= 1"}
		}
		if in.Installments.FirstDueDate.IsZero() {
			return &ValidationError{Field: "installments.first_due_date", Reason: "required"}
		}
	default:
		return &ValidationError{Field: "payment_method", Reason: "must be cash or installment"}
	}
	return nil
}

// =============================================================================
// MARK INSTALLMENT PAID
// =============================================================================

// MarkInstallmentPaid records the payment of a single installment. The
// transition is one-way: paying an already-paid installment is rejected
// with *AlreadyPaidError, not silently overwritten.
func (l *Ledger) MarkInstallmentPaid(ctx context.Context, id InstallmentID, paidDate Date) (Installment, error) {
	if paidDate.IsZero() {
		return Installment{}, &ValidationError{Field: "paid_date", Reason: "required"}
	}
	return l.repo.MarkInstallmentPaid(ctx, id, paidDate)
}

// =============================================================================
// CATALOG CHECKS
// =============================================================================

func (l *Ledger) requireUser(ctx context.Context, field string, id UserID) error {
	if id == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	if _, err := l.catalog.User(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: "user", ID: string(id)}
		}
		return err
	}
	return nil
}

func (l *Ledger) requireCompany(ctx context.Context, field string, id CompanyID) error {
	if id == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	if _, err := l.catalog.Company(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: "company", ID: string(id)}
		}
		return err
	}
	return nil
}
