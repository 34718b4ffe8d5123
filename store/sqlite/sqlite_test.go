package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/ledger-engine/ledger"
	"github.com/warp/ledger-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "ledger_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.SaveUser(ctx, ledger.User{ID: "alice", Name: "Alice"}))
	require.NoError(t, s.SaveUser(ctx, ledger.User{ID: "bob", Name: "Bob"}))
	require.NoError(t, s.SaveCompany(ctx, ledger.Company{ID: "acme", Name: "Acme Corp"}))
	require.NoError(t, s.SaveProduct(ctx, ledger.Product{
		ID:             "fridge",
		Name:           "Refrigerator",
		ReferencePrice: ledger.MustParseMoney("899.00"),
	}))
	return s
}

func testExit(planID ledger.PlanID) ledger.Exit {
	return ledger.Exit{
		ID:            ledger.ExitID(uuid.New().String()),
		RecordedBy:    "alice",
		ExitDate:      ledger.NewDate(2024, time.March, 5),
		Payee:         "acme",
		PaymentMethod: ledger.PaymentInstallment,
		Responsible:   []ledger.UserID{"alice", "bob"},
		LineItems: []ledger.LineItem{
			{
				Product:   "fridge",
				Quantity:  1,
				UnitPrice: ledger.MustParseMoney("100.00"),
				LineTotal: ledger.MustParseMoney("100.00"),
			},
		},
		TotalAmount:  ledger.MustParseMoney("100.00"),
		Note:         "kitchen upgrade",
		RegisteredAt: time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC),
		PlanID:       planID,
	}
}

func testPlan(planID ledger.PlanID, exitID ledger.ExitID) (*ledger.InstallmentPlan, []ledger.Installment) {
	plan := &ledger.InstallmentPlan{
		ID:           planID,
		ExitID:       exitID,
		TotalAmount:  ledger.MustParseMoney("100.00"),
		Count:        2,
		FirstDueDate: ledger.NewDate(2024, time.April, 1),
	}
	installments := []ledger.Installment{
		{
			ID:       ledger.InstallmentID(uuid.New().String()),
			PlanID:   planID,
			Sequence: 1,
			DueDate:  ledger.NewDate(2024, time.April, 1),
			Amount:   ledger.MustParseMoney("50.00"),
		},
		{
			ID:       ledger.InstallmentID(uuid.New().String()),
			PlanID:   planID,
			Sequence: 2,
			DueDate:  ledger.NewDate(2024, time.May, 1),
			Amount:   ledger.MustParseMoney("50.00"),
		},
	}
	return plan, installments
}

func TestStore_SaveEntry_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := ledger.Entry{
		ID:            ledger.EntryID(uuid.New().String()),
		RecordedBy:    "alice",
		Beneficiary:   "bob",
		ReferenceDate: ledger.NewDate(2024, time.March, 1),
		Amount:        ledger.MustParseMoney("1500.00"),
		PayingParty:   "acme",
		RegisteredAt:  time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveEntry(ctx, entry))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got := entries[0]

	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.Amount, got.Amount)
	assert.True(t, got.ReferenceDate.Equal(entry.ReferenceDate))
	assert.True(t, got.RegisteredAt.Equal(entry.RegisteredAt))
}

func TestStore_SaveExit_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	planID := ledger.PlanID(uuid.New().String())
	exit := testExit(planID)
	plan, installments := testPlan(planID, exit.ID)
	require.NoError(t, s.SaveExit(ctx, exit, plan, installments))

	exits, err := s.Exits(ctx)
	require.NoError(t, err)
	require.Len(t, exits, 1)
	got := exits[0]

	assert.Equal(t, exit.ID, got.ID)
	assert.Equal(t, exit.TotalAmount, got.TotalAmount)
	assert.Equal(t, exit.Responsible, got.Responsible)
	assert.Equal(t, exit.Note, got.Note)
	assert.Equal(t, planID, got.PlanID)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, exit.LineItems[0], got.LineItems[0])

	stored, err := s.InstallmentsByPlan(ctx, planID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 1, stored[0].Sequence)
	assert.Equal(t, 2, stored[1].Sequence)
	assert.Nil(t, stored[0].PaidDate)
	assert.True(t, stored[1].DueDate.Equal(ledger.NewDate(2024, time.May, 1)))
}

func TestStore_SaveExit_DuplicateIdempotencyKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	planID := ledger.PlanID(uuid.New().String())
	first := testExit(planID)
	first.IdempotencyKey = "req-42"
	plan, installments := testPlan(planID, first.ID)
	require.NoError(t, s.SaveExit(ctx, first, plan, installments))

	// Retry with the same key but fresh ids. The whole write must roll
	// back: no second exit, no orphan plan or installments.
	retryPlanID := ledger.PlanID(uuid.New().String())
	retry := testExit(retryPlanID)
	retry.IdempotencyKey = "req-42"
	retryPlan, retryInstallments := testPlan(retryPlanID, retry.ID)

	err := s.SaveExit(ctx, retry, retryPlan, retryInstallments)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrDuplicateIdempotencyKey)

	exits, err := s.Exits(ctx)
	require.NoError(t, err)
	assert.Len(t, exits, 1)

	all, err := s.Installments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	orphans, err := s.InstallmentsByPlan(ctx, retryPlanID)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestStore_MarkInstallmentPaid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	planID := ledger.PlanID(uuid.New().String())
	exit := testExit(planID)
	plan, installments := testPlan(planID, exit.ID)
	require.NoError(t, s.SaveExit(ctx, exit, plan, installments))

	paidDate := ledger.NewDate(2024, time.April, 2)
	paid, err := s.MarkInstallmentPaid(ctx, installments[0].ID, paidDate)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidDate)
	assert.True(t, paid.PaidDate.Equal(paidDate))

	t.Run("double pay is rejected", func(t *testing.T) {
		_, err := s.MarkInstallmentPaid(ctx, installments[0].ID, ledger.NewDate(2024, time.April, 9))
		require.Error(t, err)
		assert.ErrorIs(t, err, ledger.ErrAlreadyPaid)

		var alreadyPaid *ledger.AlreadyPaidError
		require.ErrorAs(t, err, &alreadyPaid)
		assert.True(t, alreadyPaid.PaidDate.Equal(paidDate))
	})

	t.Run("unknown installment", func(t *testing.T) {
		_, err := s.MarkInstallmentPaid(ctx, "no-such-installment", paidDate)
		assert.True(t, ledger.IsNotFound(err), "got %v", err)
	})

	t.Run("paid date survives reload", func(t *testing.T) {
		got, err := s.Installment(ctx, installments[0].ID)
		require.NoError(t, err)
		require.NotNil(t, got.PaidDate)
		assert.True(t, got.PaidDate.Equal(paidDate))
	})
}

func TestStore_Catalog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.User(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	_, err = s.User(ctx, "nobody")
	assert.True(t, ledger.IsNotFound(err), "got %v", err)

	p, err := s.Product(ctx, "fridge")
	require.NoError(t, err)
	assert.Equal(t, "899.00", p.ReferencePrice.String())

	t.Run("save is an upsert", func(t *testing.T) {
		require.NoError(t, s.SaveCompany(ctx, ledger.Company{ID: "acme", Name: "Acme Corporation"}))
		c, err := s.Company(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, "Acme Corporation", c.Name)

		companies, err := s.Companies(ctx)
		require.NoError(t, err)
		assert.Len(t, companies, 1)
	})

	t.Run("lists are sorted by id", func(t *testing.T) {
		users, err := s.Users(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Alice", users[0].Name)
		assert.Equal(t, "Bob", users[1].Name)
	})
}
