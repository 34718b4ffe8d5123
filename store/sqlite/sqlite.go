/*
Package sqlite provides the SQLite-backed Repository and Catalog.

PURPOSE:
  Implements ledger.Repository and ledger.Catalog using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL dialect
  differences. Unlike the in-memory store, state here preserves the engine's
  invariants across restarts.

KEY TABLES:
  entries:           Income records (no update/delete statements exist)
  exits:             Expense records + optional idempotency key (UNIQUE)
  exit_responsible:  Responsible-user set per exit
  line_items:        Ordered purchase lines per exit
  installment_plans: One per installment exit
  installments:      N rows per plan; paid_date is the only mutated column
  users/companies/products: The catalogs the engine references by id

ATOMICITY:
  SaveExit writes the exit, its responsible set, its line items and (when
  present) the plan plus all installments inside ONE BEGIN/COMMIT. On any
  failure the transaction rolls back and nothing is observable.

MARK-PAID:
  UPDATE installments SET paid_date = ? WHERE id = ? AND paid_date IS NULL.
  RowsAffected distinguishes success from the already-paid conflict, so two
  concurrent calls produce exactly one success.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

SEE ALSO:
  - ledger/repository.go: Interface contracts
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/ledger-engine/ledger"
)

// Store implements ledger.Repository and ledger.Catalog using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ledger.ErrPersistence, err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate database: %v", ledger.ErrPersistence, err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for metrics gauges.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		recorded_by TEXT NOT NULL,
		beneficiary TEXT NOT NULL,
		reference_date TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		paying_party TEXT NOT NULL,
		registered_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_reference_date
		ON entries(reference_date DESC);

	CREATE TABLE IF NOT EXISTS exits (
		id TEXT PRIMARY KEY,
		recorded_by TEXT NOT NULL,
		exit_date TEXT NOT NULL,
		payee TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		total_cents INTEGER NOT NULL,
		note TEXT,
		registered_at TEXT NOT NULL,
		plan_id TEXT,
		idempotency_key TEXT UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_exits_exit_date
		ON exits(exit_date DESC);

	CREATE TABLE IF NOT EXISTS exit_responsible (
		exit_id TEXT NOT NULL REFERENCES exits(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		PRIMARY KEY (exit_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS line_items (
		exit_id TEXT NOT NULL REFERENCES exits(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price_cents INTEGER NOT NULL,
		line_total_cents INTEGER NOT NULL,
		PRIMARY KEY (exit_id, position)
	);

	CREATE TABLE IF NOT EXISTS installment_plans (
		id TEXT PRIMARY KEY,
		exit_id TEXT NOT NULL REFERENCES exits(id) ON DELETE CASCADE,
		total_cents INTEGER NOT NULL,
		installment_count INTEGER NOT NULL,
		first_due_date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS installments (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES installment_plans(id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL,
		due_date TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		paid_date TEXT,
		UNIQUE (plan_id, sequence)
	);

	CREATE INDEX IF NOT EXISTS idx_installments_due_date
		ON installments(due_date);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		reference_price_cents INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func encodeDate(d ledger.Date) string { return d.String() }

func decodeDate(s string) (ledger.Date, error) {
	return ledger.ParseDate(s)
}

// =============================================================================
// REPOSITORY - ENTRIES
// =============================================================================

func (s *Store) SaveEntry(ctx context.Context, entry ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, recorded_by, beneficiary, reference_date, amount_cents, paying_party, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(entry.ID), string(entry.RecordedBy), string(entry.Beneficiary),
		encodeDate(entry.ReferenceDate), entry.Amount.Cents, string(entry.PayingParty),
		entry.RegisteredAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: save entry: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Store) Entries(ctx context.Context) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recorded_by, beneficiary, reference_date, amount_cents, paying_party, registered_at
		FROM entries ORDER BY registered_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load entries: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var (
			e                            ledger.Entry
			refDate, registeredAt        string
			id, recordedBy, beneficiary  string
			payingParty                  string
		)
		if err := rows.Scan(&id, &recordedBy, &beneficiary, &refDate, &e.Amount.Cents, &payingParty, &registeredAt); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", ledger.ErrPersistence, err)
		}
		e.ID = ledger.EntryID(id)
		e.RecordedBy = ledger.UserID(recordedBy)
		e.Beneficiary = ledger.UserID(beneficiary)
		e.PayingParty = ledger.CompanyID(payingParty)
		if e.ReferenceDate, err = decodeDate(refDate); err != nil {
			return nil, fmt.Errorf("%w: decode entry date: %v", ledger.ErrPersistence, err)
		}
		if e.RegisteredAt, err = time.Parse(time.RFC3339, registeredAt); err != nil {
			return nil, fmt.Errorf("%w: decode entry timestamp: %v", ledger.ErrPersistence, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// REPOSITORY - EXITS (atomic with plan + installments)
// =============================================================================

func (s *Store) SaveExit(ctx context.Context, exit ledger.Exit, plan *ledger.InstallmentPlan, installments []ledger.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ledger.ErrPersistence, err)
	}
	defer tx.Rollback()

	var key any
	if exit.IdempotencyKey != "" {
		key = exit.IdempotencyKey
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO exits (id, recorded_by, exit_date, payee, payment_method, total_cents, note, registered_at, plan_id, idempotency_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(exit.ID), string(exit.RecordedBy), encodeDate(exit.ExitDate), string(exit.Payee),
		string(exit.PaymentMethod), exit.TotalAmount.Cents, exit.Note,
		exit.RegisteredAt.UTC().Format(time.RFC3339), nullableString(string(exit.PlanID)), key)
	if err != nil {
		if isUniqueViolation(err, "exits.idempotency_key") {
			return ledger.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("%w: save exit: %v", ledger.ErrPersistence, err)
	}

	for _, uid := range exit.Responsible {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exit_responsible (exit_id, user_id) VALUES (?, ?)`,
			string(exit.ID), string(uid)); err != nil {
			return fmt.Errorf("%w: save responsible user: %v", ledger.ErrPersistence, err)
		}
	}

	for i, li := range exit.LineItems {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO line_items (exit_id, position, product_id, quantity, unit_price_cents, line_total_cents)
			VALUES (?, ?, ?, ?, ?, ?)`,
			string(exit.ID), i, string(li.Product), li.Quantity,
			li.UnitPrice.Cents, li.LineTotal.Cents); err != nil {
			return fmt.Errorf("%w: save line item: %v", ledger.ErrPersistence, err)
		}
	}

	if plan != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO installment_plans (id, exit_id, total_cents, installment_count, first_due_date)
			VALUES (?, ?, ?, ?, ?)`,
			string(plan.ID), string(plan.ExitID), plan.TotalAmount.Cents,
			plan.Count, encodeDate(plan.FirstDueDate)); err != nil {
			return fmt.Errorf("%w: save plan: %v", ledger.ErrPersistence, err)
		}
		for _, inst := range installments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO installments (id, plan_id, sequence, due_date, amount_cents, paid_date)
				VALUES (?, ?, ?, ?, ?, NULL)`,
				string(inst.ID), string(inst.PlanID), inst.Sequence,
				encodeDate(inst.DueDate), inst.Amount.Cents); err != nil {
				return fmt.Errorf("%w: save installment: %v", ledger.ErrPersistence, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit exit: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Store) Exits(ctx context.Context) ([]ledger.Exit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recorded_by, exit_date, payee, payment_method, total_cents,
		       COALESCE(note, ''), registered_at, COALESCE(plan_id, ''), COALESCE(idempotency_key, '')
		FROM exits ORDER BY registered_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load exits: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var exits []ledger.Exit
	index := make(map[ledger.ExitID]int)
	for rows.Next() {
		var (
			x                        ledger.Exit
			id, recordedBy, exitDate string
			payee, method            string
			registeredAt, planID     string
		)
		if err := rows.Scan(&id, &recordedBy, &exitDate, &payee, &method,
			&x.TotalAmount.Cents, &x.Note, &registeredAt, &planID, &x.IdempotencyKey); err != nil {
			return nil, fmt.Errorf("%w: scan exit: %v", ledger.ErrPersistence, err)
		}
		x.ID = ledger.ExitID(id)
		x.RecordedBy = ledger.UserID(recordedBy)
		x.Payee = ledger.CompanyID(payee)
		x.PaymentMethod = ledger.PaymentMethod(method)
		x.PlanID = ledger.PlanID(planID)
		if x.ExitDate, err = decodeDate(exitDate); err != nil {
			return nil, fmt.Errorf("%w: decode exit date: %v", ledger.ErrPersistence, err)
		}
		if x.RegisteredAt, err = time.Parse(time.RFC3339, registeredAt); err != nil {
			return nil, fmt.Errorf("%w: decode exit timestamp: %v", ledger.ErrPersistence, err)
		}
		index[x.ID] = len(exits)
		exits = append(exits, x)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load exits: %v", ledger.ErrPersistence, err)
	}

	if err := s.attachResponsible(ctx, exits, index); err != nil {
		return nil, err
	}
	if err := s.attachLineItems(ctx, exits, index); err != nil {
		return nil, err
	}
	return exits, nil
}

func (s *Store) attachResponsible(ctx context.Context, exits []ledger.Exit, index map[ledger.ExitID]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT exit_id, user_id FROM exit_responsible ORDER BY exit_id, user_id`)
	if err != nil {
		return fmt.Errorf("%w: load responsible users: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	for rows.Next() {
		var exitID, userID string
		if err := rows.Scan(&exitID, &userID); err != nil {
			return fmt.Errorf("%w: scan responsible user: %v", ledger.ErrPersistence, err)
		}
		if i, ok := index[ledger.ExitID(exitID)]; ok {
			exits[i].Responsible = append(exits[i].Responsible, ledger.UserID(userID))
		}
	}
	return rows.Err()
}

func (s *Store) attachLineItems(ctx context.Context, exits []ledger.Exit, index map[ledger.ExitID]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT exit_id, product_id, quantity, unit_price_cents, line_total_cents
		FROM line_items ORDER BY exit_id, position`)
	if err != nil {
		return fmt.Errorf("%w: load line items: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			exitID, productID string
			li                ledger.LineItem
		)
		if err := rows.Scan(&exitID, &productID, &li.Quantity, &li.UnitPrice.Cents, &li.LineTotal.Cents); err != nil {
			return fmt.Errorf("%w: scan line item: %v", ledger.ErrPersistence, err)
		}
		li.Product = ledger.ProductID(productID)
		if i, ok := index[ledger.ExitID(exitID)]; ok {
			exits[i].LineItems = append(exits[i].LineItems, li)
		}
	}
	return rows.Err()
}

// =============================================================================
// REPOSITORY - INSTALLMENTS
// =============================================================================

// MarkInstallmentPaid is check-then-set in a single conditional UPDATE: the
// WHERE paid_date IS NULL clause means a concurrent double pay can only
// succeed once; the loser sees zero rows affected and gets the conflict.
func (s *Store) MarkInstallmentPaid(ctx context.Context, id ledger.InstallmentID, paidDate ledger.Date) (ledger.Installment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE installments SET paid_date = ? WHERE id = ? AND paid_date IS NULL`,
		encodeDate(paidDate), string(id))
	if err != nil {
		return ledger.Installment{}, fmt.Errorf("%w: mark installment paid: %v", ledger.ErrPersistence, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ledger.Installment{}, fmt.Errorf("%w: mark installment paid: %v", ledger.ErrPersistence, err)
	}

	inst, lookupErr := s.installment(ctx, id)
	if affected == 1 {
		if lookupErr != nil {
			return ledger.Installment{}, lookupErr
		}
		return inst, nil
	}

	// Zero rows: either the id is unknown or the installment was already paid.
	if lookupErr != nil {
		return ledger.Installment{}, lookupErr
	}
	return ledger.Installment{}, &ledger.AlreadyPaidError{Installment: id, PaidDate: *inst.PaidDate}
}

func (s *Store) Installments(ctx context.Context) ([]ledger.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryInstallments(ctx, `
		SELECT id, plan_id, sequence, due_date, amount_cents, paid_date
		FROM installments ORDER BY plan_id, sequence`)
}

func (s *Store) InstallmentsByPlan(ctx context.Context, planID ledger.PlanID) ([]ledger.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryInstallments(ctx, `
		SELECT id, plan_id, sequence, due_date, amount_cents, paid_date
		FROM installments WHERE plan_id = ? ORDER BY sequence`, string(planID))
}

func (s *Store) Installment(ctx context.Context, id ledger.InstallmentID) (ledger.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installment(ctx, id)
}

func (s *Store) installment(ctx context.Context, id ledger.InstallmentID) (ledger.Installment, error) {
	insts, err := s.queryInstallments(ctx, `
		SELECT id, plan_id, sequence, due_date, amount_cents, paid_date
		FROM installments WHERE id = ?`, string(id))
	if err != nil {
		return ledger.Installment{}, err
	}
	if len(insts) == 0 {
		return ledger.Installment{}, &ledger.NotFoundError{Kind: "installment", ID: string(id)}
	}
	return insts[0], nil
}

func (s *Store) queryInstallments(ctx context.Context, query string, args ...any) ([]ledger.Installment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: load installments: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var insts []ledger.Installment
	for rows.Next() {
		var (
			inst            ledger.Installment
			id, planID, due string
			paid            sql.NullString
		)
		if err := rows.Scan(&id, &planID, &inst.Sequence, &due, &inst.Amount.Cents, &paid); err != nil {
			return nil, fmt.Errorf("%w: scan installment: %v", ledger.ErrPersistence, err)
		}
		inst.ID = ledger.InstallmentID(id)
		inst.PlanID = ledger.PlanID(planID)
		if inst.DueDate, err = decodeDate(due); err != nil {
			return nil, fmt.Errorf("%w: decode due date: %v", ledger.ErrPersistence, err)
		}
		if paid.Valid {
			d, err := decodeDate(paid.String)
			if err != nil {
				return nil, fmt.Errorf("%w: decode paid date: %v", ledger.ErrPersistence, err)
			}
			inst.PaidDate = &d
		}
		insts = append(insts, inst)
	}
	return insts, rows.Err()
}

// =============================================================================
// CATALOG
// =============================================================================

func (s *Store) User(ctx context.Context, id ledger.UserID) (ledger.User, error) {
	var u ledger.User
	var uid string
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM users WHERE id = ?`, string(id)).
		Scan(&uid, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.User{}, &ledger.NotFoundError{Kind: "user", ID: string(id)}
	}
	if err != nil {
		return ledger.User{}, fmt.Errorf("%w: load user: %v", ledger.ErrPersistence, err)
	}
	u.ID = ledger.UserID(uid)
	return u, nil
}

func (s *Store) Company(ctx context.Context, id ledger.CompanyID) (ledger.Company, error) {
	var c ledger.Company
	var cid string
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM companies WHERE id = ?`, string(id)).
		Scan(&cid, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Company{}, &ledger.NotFoundError{Kind: "company", ID: string(id)}
	}
	if err != nil {
		return ledger.Company{}, fmt.Errorf("%w: load company: %v", ledger.ErrPersistence, err)
	}
	c.ID = ledger.CompanyID(cid)
	return c, nil
}

func (s *Store) Product(ctx context.Context, id ledger.ProductID) (ledger.Product, error) {
	var p ledger.Product
	var pid string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, reference_price_cents FROM products WHERE id = ?`, string(id)).
		Scan(&pid, &p.Name, &p.ReferencePrice.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Product{}, &ledger.NotFoundError{Kind: "product", ID: string(id)}
	}
	if err != nil {
		return ledger.Product{}, fmt.Errorf("%w: load product: %v", ledger.ErrPersistence, err)
	}
	p.ID = ledger.ProductID(pid)
	return p, nil
}

func (s *Store) Users(ctx context.Context) ([]ledger.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load users: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var users []ledger.User
	for rows.Next() {
		var id string
		var u ledger.User
		if err := rows.Scan(&id, &u.Name); err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", ledger.ErrPersistence, err)
		}
		u.ID = ledger.UserID(id)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) Companies(ctx context.Context) ([]ledger.Company, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load companies: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var companies []ledger.Company
	for rows.Next() {
		var id string
		var c ledger.Company
		if err := rows.Scan(&id, &c.Name); err != nil {
			return nil, fmt.Errorf("%w: scan company: %v", ledger.ErrPersistence, err)
		}
		c.ID = ledger.CompanyID(id)
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *Store) Products(ctx context.Context) ([]ledger.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, reference_price_cents FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load products: %v", ledger.ErrPersistence, err)
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		var id string
		var p ledger.Product
		if err := rows.Scan(&id, &p.Name, &p.ReferencePrice.Cents); err != nil {
			return nil, fmt.Errorf("%w: scan product: %v", ledger.ErrPersistence, err)
		}
		p.ID = ledger.ProductID(id)
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) SaveUser(ctx context.Context, u ledger.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(u.ID), u.Name)
	if err != nil {
		return fmt.Errorf("%w: save user: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Store) SaveCompany(ctx context.Context, c ledger.Company) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(c.ID), c.Name)
	if err != nil {
		return fmt.Errorf("%w: save company: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Store) SaveProduct(ctx context.Context, p ledger.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, reference_price_cents) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, reference_price_cents = excluded.reference_price_cents`,
		string(p.ID), p.Name, p.ReferencePrice.Cents)
	if err != nil {
		return fmt.Errorf("%w: save product: %v", ledger.ErrPersistence, err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
