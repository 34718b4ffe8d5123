// Package store provides Repository/Catalog implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/ledger-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ledger.Repository and ledger.Catalog with process-local
// maps. It is a development stub: state does not survive a restart, so it is
// not acceptable for production use. The mutex gives mark-paid its
// check-then-set guarantee.
type Memory struct {
	mu sync.RWMutex

	entries      []ledger.Entry
	exits        []ledger.Exit
	plans        map[ledger.PlanID]ledger.InstallmentPlan
	installments map[ledger.InstallmentID]ledger.Installment
	idempotency  map[string]bool

	users     map[ledger.UserID]ledger.User
	companies map[ledger.CompanyID]ledger.Company
	products  map[ledger.ProductID]ledger.Product
}

func NewMemory() *Memory {
	return &Memory{
		plans:        make(map[ledger.PlanID]ledger.InstallmentPlan),
		installments: make(map[ledger.InstallmentID]ledger.Installment),
		idempotency:  make(map[string]bool),
		users:        make(map[ledger.UserID]ledger.User),
		companies:    make(map[ledger.CompanyID]ledger.Company),
		products:     make(map[ledger.ProductID]ledger.Product),
	}
}

// =============================================================================
// REPOSITORY
// =============================================================================

func (m *Memory) SaveEntry(_ context.Context, entry ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// SaveExit appends the exit, plan and installments under one lock, so a
// partially created exit is never observable.
func (m *Memory) SaveExit(_ context.Context, exit ledger.Exit, plan *ledger.InstallmentPlan, installments []ledger.Installment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if exit.IdempotencyKey != "" {
		if m.idempotency[exit.IdempotencyKey] {
			return ledger.ErrDuplicateIdempotencyKey
		}
		m.idempotency[exit.IdempotencyKey] = true
	}

	m.exits = append(m.exits, exit)
	if plan != nil {
		m.plans[plan.ID] = *plan
		for _, inst := range installments {
			m.installments[inst.ID] = inst
		}
	}
	return nil
}

func (m *Memory) MarkInstallmentPaid(_ context.Context, id ledger.InstallmentID, paidDate ledger.Date) (ledger.Installment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.installments[id]
	if !ok {
		return ledger.Installment{}, &ledger.NotFoundError{Kind: "installment", ID: string(id)}
	}
	if inst.PaidDate != nil {
		return ledger.Installment{}, &ledger.AlreadyPaidError{Installment: id, PaidDate: *inst.PaidDate}
	}

	paid := paidDate
	inst.PaidDate = &paid
	m.installments[id] = inst
	return inst, nil
}

func (m *Memory) Entries(_ context.Context) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *Memory) Exits(_ context.Context) ([]ledger.Exit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Exit, len(m.exits))
	copy(out, m.exits)
	return out, nil
}

func (m *Memory) Installments(_ context.Context) ([]ledger.Installment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Installment, 0, len(m.installments))
	for _, inst := range m.installments {
		out = append(out, inst)
	}
	sortInstallments(out)
	return out, nil
}

func (m *Memory) InstallmentsByPlan(_ context.Context, planID ledger.PlanID) ([]ledger.Installment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.Installment
	for _, inst := range m.installments {
		if inst.PlanID == planID {
			out = append(out, inst)
		}
	}
	sortInstallments(out)
	return out, nil
}

func (m *Memory) Installment(_ context.Context, id ledger.InstallmentID) (ledger.Installment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.installments[id]
	if !ok {
		return ledger.Installment{}, &ledger.NotFoundError{Kind: "installment", ID: string(id)}
	}
	return inst, nil
}

func sortInstallments(insts []ledger.Installment) {
	sort.Slice(insts, func(i, j int) bool {
		if insts[i].PlanID != insts[j].PlanID {
			return insts[i].PlanID < insts[j].PlanID
		}
		return insts[i].Sequence < insts[j].Sequence
	})
}

// =============================================================================
// CATALOG
// =============================================================================

func (m *Memory) User(_ context.Context, id ledger.UserID) (ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return ledger.User{}, &ledger.NotFoundError{Kind: "user", ID: string(id)}
	}
	return u, nil
}

func (m *Memory) Company(_ context.Context, id ledger.CompanyID) (ledger.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	if !ok {
		return ledger.Company{}, &ledger.NotFoundError{Kind: "company", ID: string(id)}
	}
	return c, nil
}

func (m *Memory) Product(_ context.Context, id ledger.ProductID) (ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return ledger.Product{}, &ledger.NotFoundError{Kind: "product", ID: string(id)}
	}
	return p, nil
}

func (m *Memory) Users(_ context.Context) ([]ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Companies(_ context.Context) ([]ledger.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Company, 0, len(m.companies))
	for _, c := range m.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Products(_ context.Context) ([]ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveUser(_ context.Context, u ledger.User) error {
	if u.ID == "" {
		return fmt.Errorf("%w: user id required", ledger.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) SaveCompany(_ context.Context, c ledger.Company) error {
	if c.ID == "" {
		return fmt.Errorf("%w: company id required", ledger.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID] = c
	return nil
}

func (m *Memory) SaveProduct(_ context.Context, p ledger.Product) error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id required", ledger.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}
