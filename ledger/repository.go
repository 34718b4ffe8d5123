/*
repository.go - Persistence and catalog interfaces (external collaborators)

PURPOSE:
  Defines the boundary between the engine and everything that stores data.
  The Ledger and Aggregator hold these interfaces, never a concrete store,
  and never a module-level global.

ATOMICITY CONTRACT:
  SaveExit persists an exit together with its plan and all installments as
  ONE unit. A partially created exit (exit without its installments, or the
  reverse) must never be observable; on failure nothing is committed and the
  store returns an error wrapping ErrPersistence.

MARK-PAID CONTRACT:
  MarkInstallmentPaid is check-then-set on a single installment row. Two
  concurrent calls for the same installment must yield exactly one success
  and one ErrAlreadyPaid, never two silent successes. SQLite gets this from
  a conditional UPDATE; the memory store from a mutex.

IMPLEMENTATIONS:
  - store/sqlite: production store (this module's store/sqlite package)
  - ledger/store: in-memory store for tests and development. The memory
    store is explicitly a dev stub: production state must survive restarts.

SEE ALSO:
  - ledger.go:    Mutations through Repository
  - aggregate.go: Reads through Repository
*/
package ledger

import "context"

// =============================================================================
// REPOSITORY - Persistence for entries, exits, plans, installments
// =============================================================================

// Repository persists the engine's records. Every implementation returns
// errors wrapping ErrNotFound / ErrDuplicateIdempotencyKey / ErrAlreadyPaid /
// ErrPersistence as appropriate, so callers can discriminate without knowing
// the storage technology.
type Repository interface {
	// SaveEntry persists a new income entry.
	SaveEntry(ctx context.Context, entry Entry) error

	// SaveExit persists an exit and, when plan is non-nil, its installment
	// plan and all installments atomically. For cash exits plan is nil and
	// installments empty. Rejects a reused exit idempotency key with
	// ErrDuplicateIdempotencyKey.
	SaveExit(ctx context.Context, exit Exit, plan *InstallmentPlan, installments []Installment) error

	// MarkInstallmentPaid sets the paid date of an unpaid installment and
	// returns the updated record. Check-then-set: returns ErrNotFound for an
	// unknown id and ErrAlreadyPaid (via *AlreadyPaidError) when the paid
	// date is already set.
	MarkInstallmentPaid(ctx context.Context, id InstallmentID, paidDate Date) (Installment, error)

	// Entries returns all income entries, oldest first.
	Entries(ctx context.Context) ([]Entry, error)

	// Exits returns all exits, oldest first.
	Exits(ctx context.Context) ([]Exit, error)

	// Installments returns all installments across all plans, ordered by
	// plan then sequence.
	Installments(ctx context.Context) ([]Installment, error)

	// InstallmentsByPlan returns one plan's installments ordered by sequence.
	InstallmentsByPlan(ctx context.Context, planID PlanID) ([]Installment, error)

	// Installment returns a single installment or ErrNotFound.
	Installment(ctx context.Context, id InstallmentID) (Installment, error)
}

// =============================================================================
// CATALOG - Read-mostly lookups for foreign ids
// =============================================================================

// Catalog resolves the user/company/product ids the engine stores. The
// engine only checks existence when validating input; name resolution is a
// presentation concern of the API layer. The engine never caches lookups.
type Catalog interface {
	User(ctx context.Context, id UserID) (User, error)
	Company(ctx context.Context, id CompanyID) (Company, error)
	Product(ctx context.Context, id ProductID) (Product, error)

	Users(ctx context.Context) ([]User, error)
	Companies(ctx context.Context) ([]Company, error)
	Products(ctx context.Context) ([]Product, error)

	SaveUser(ctx context.Context, u User) error
	SaveCompany(ctx context.Context, c Company) error
	SaveProduct(ctx context.Context, p Product) error
}
