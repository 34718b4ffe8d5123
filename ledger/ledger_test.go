package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/ledger-engine/ledger"
	"github.com/warp/ledger-engine/ledger/store"
)

func seedCatalog(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveUser(ctx, ledger.User{ID: "alice", Name: "Alice"}))
	require.NoError(t, m.SaveUser(ctx, ledger.User{ID: "bob", Name: "Bob"}))
	require.NoError(t, m.SaveCompany(ctx, ledger.Company{ID: "acme", Name: "Acme Corp"}))
	require.NoError(t, m.SaveProduct(ctx, ledger.Product{
		ID:             "fridge",
		Name:           "Refrigerator",
		ReferencePrice: ledger.MustParseMoney("899.00"),
	}))
	require.NoError(t, m.SaveProduct(ctx, ledger.Product{
		ID:             "bread",
		Name:           "Bread",
		ReferencePrice: ledger.MustParseMoney("2.50"),
	}))
	return m
}

func TestLedger_CreateEntry(t *testing.T) {
	mem := seedCatalog(t)
	l := ledger.NewLedger(mem, mem)
	ctx := context.Background()

	entry, err := l.CreateEntry(ctx, ledger.EntryInput{
		RecordedBy:    "alice",
		Beneficiary:   "bob",
		ReferenceDate: ledger.NewDate(2024, time.March, 1),
		Amount:        ledger.MustParseMoney("1500.00"),
		PayingParty:   "acme",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, ledger.UserID("bob"), entry.Beneficiary)
	assert.False(t, entry.RegisteredAt.IsZero())

	entries, err := mem.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestLedger_CreateEntry_Rejections(t *testing.T) {
	mem := seedCatalog(t)
	l := ledger.NewLedger(mem, mem)
	ctx := context.Background()

	valid := ledger.EntryInput{
		RecordedBy:    "alice",
		Beneficiary:   "bob",
		ReferenceDate: ledger.NewDate(2024, time.March, 1),
		Amount:        ledger.MustParseMoney("1500.00"),
		PayingParty:   "acme",
	}

	t.Run("non positive amount", func(t *testing.T) {
		in := valid
		in.Amount = ledger.Money{}
		_, err := l.CreateEntry(ctx, in)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("unknown beneficiary", func(t *testing.T) {
		in := valid
		in.Beneficiary = "nobody"
		_, err := l.CreateEntry(ctx, in)
		assert.True(t, ledger.IsNotFound(err), "got %v", err)
	})

	t.Run("unknown paying party", func(t *testing.T) {
		in := valid
		in.PayingParty = "ghost-corp"
		_, err := l.CreateEntry(ctx, in)
		assert.True(t, ledger.IsNotFound(err), "got %v", err)
	})

	// Nothing was persisted by the failed attempts.
	entries, err := mem.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func cashExitInput() ledger.ExitInput {
	return ledger.ExitInput{
		RecordedBy:    "alice",
		ExitDate:      ledger.NewDate(2024, time.March, 5),
		Payee:         "acme",
		PaymentMethod: ledger.PaymentCash,
		Responsible:   []ledger.UserID{"alice"},
		LineItems: []ledger.LineItemInput{
			{Product: "bread", Quantity: 2, UnitPrice: ledger.MustParseMoney("2.50")},
		},
	}
}

func TestLedger_CreateExit_Cash(t *testing.T) {
	mem := seedCatalog(t)
	l := ledger.NewLedger(mem, mem)
	ctx := context.Background()

	in := cashExitInput()
	in.LineItems = append(in.LineItems, ledger.LineItemInput{
		Product: "fridge", Quantity: 1, UnitPrice: ledger.MustParseMoney("899.00"),
	})

	exit, installments, err := l.CreateExit(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, installments)
	assert.Empty(t, exit.PlanID)

	// Total is computed server-side from the line items: 2*2.50 + 899.00.
	assert.Equal(t, "904.00", exit.TotalAmount.String())
	require.Len(t, exit.LineItems, 2)
	assert.Equal(t, "5.00", exit.LineItems[0].LineTotal.String())

	exits, err := mem.Exits(ctx)
	require.NoError(t, err)
	require.Len(t, exits, 1)
}

func TestLedger_CreateExit_Installment(t *testing.T) {
	mem := seedCatalog(t)
	l := ledger.NewLedger(mem, mem)
	ctx := context.Background()

	in := cashExitInput()
	in.PaymentMethod = ledger.PaymentInstallment
	in.LineItems = []ledger.LineItemInput{
		{Product: "fridge", Quantity: 1, UnitPrice: ledger.MustParseMoney("100.00")},
	}
	in.Installments = &ledger.InstallmentConfig{
		Count:        3,
		FirstDueDate: ledger.NewDate(2024, time.January, 31),
	}

	exit, installments, err := l.CreateExit(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, exit.PlanID)
	require.Len(t, installments, 3)

	var sum ledger.Money
	for i, inst := range installments {
		assert.Equal(t, exit.PlanID, inst.PlanID)
		assert.Equal(t, i+1, inst.Sequence)
		assert.Nil(t, inst.PaidDate)
		sum = sum.Add(inst.Amount)
	}
	assert.Equal(t, exit.TotalAmount, sum)
	assert.Equal(t, ledger.NewDate(2024, time.February, 29), installments[1].DueDate)

	stored, err := mem.InstallmentsByPlan(ctx, exit.PlanID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestLedger_CreateExit_Rejections(t *testing.T) {
	mem := seedCatalog(t)
	l := ledger.NewLedger(mem, mem)
	ctx := context.Background()

	mutate := []struct {
		name      string
		change    func(*ledger.ExitInput)
		wantNotFd bool
	}{
		{"missing exit date", func(in *ledger.ExitInput) { in.ExitDate = ledger.Date{} }, false},
		{"no responsible users", func(in *ledger.ExitInput) { in.Responsible = nil }, false},
		{"no line items", func(in *ledger.ExitInput) { in.LineItems = nil }, false},
		{"zero quantity", func(in *ledger.ExitInput) { in.LineItems[0].Quantity = 0 }, false},
		{"quantity over cap", func(in *ledger.ExitInput) { in.LineItems[0].Quantity = ledger.MaxLineItemQuantity + 1 }, false},
		{"free line item", func(in *ledger.ExitInput) { in.LineItems[0].UnitPrice = ledger.Money{} }, false},
		{"unknown payment method", func(in *ledger.ExitInput) { in.PaymentMethod = "barter" }, false},
		{"cash with installment config", func(in *ledger.ExitInput) {
			in.Installments = &ledger.InstallmentConfig{Count: 3, FirstDueDate: in.ExitDate}
		}, false},
		{"installment without config", func(in *ledger.ExitInput) {
			in.PaymentMethod = ledger.PaymentInstallment
		}, false},
		{"unknown payee", func(in *ledger.ExitInput) { in.Payee = "ghost-corp" }, true},
		{"unknown responsible user", func(in *ledger.ExitInput) { in.Responsible = []ledger.UserID{"nobody"} }, true},
		{"unknown product", func(in *ledger.ExitInput) { in.LineItems[0].Product = "unicorn" }, true},
	}

	for _, tc := range mutate {
		t.Run(tc.name, func(t *testing.T) {
			in := cashExitInput()
			tc.change(&in)
			_, _, err := l.CreateExit(ctx, in)
			require.Error(t, err)
			if tc.wantNotFd {
				assert.True(t, ledger.IsNotFound(err), "got %v", err)
			} else {
				assert.ErrorIs(t, err, ledger.ErrValidation)
				assert.True(t, ledger.IsClientError(err), "got %v", err)
			}
		})
	}

	// A rejected exit leaves no trace: no exit, no plan, no installments.
	exits, err := mem.Exits(ctx)
	require.NoError(t, err)
	assert.Empty(t, exits)
	insts, err := mem.Installments(ctx)
	require.NoError(t, err)
	assert.Empty(t, insts)
}

func TestLedger_CreateExit_IdempotencyKey(t *testing.T) {
	mem := seedCatalog(t)
	l := ledger.NewLedger(mem, mem)
	ctx := context.Background()

	in := cashExitInput()
	in.IdempotencyKey = "req-42"

	_, _, err := l.CreateExit(ctx, in)
	require.NoError(t, err)

	_, _, err = l.CreateExit(ctx, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrDuplicateIdempotencyKey)
	assert.True(t, ledger.IsConflict(err))

	exits, err := mem.Exits(ctx)
	require.NoError(t, err)
	assert.Len(t, exits, 1)
}

func TestLedger_MarkInstallmentPaid(t *testing.T) {
	mem := seedCatalog(t)
	l := ledger.NewLedger(mem, mem)
	ctx := context.Background()

	in := cashExitInput()
	in.PaymentMethod = ledger.PaymentInstallment
	in.Installments = &ledger.InstallmentConfig{
		Count:        2,
		FirstDueDate: ledger.NewDate(2024, time.April, 1),
	}
	_, installments, err := l.CreateExit(ctx, in)
	require.NoError(t, err)
	require.Len(t, installments, 2)

	paidDate := ledger.NewDate(2024, time.April, 2)
	inst, err := l.MarkInstallmentPaid(ctx, installments[0].ID, paidDate)
	require.NoError(t, err)
	require.NotNil(t, inst.PaidDate)
	assert.True(t, inst.PaidDate.Equal(paidDate))

	t.Run("second payment is rejected", func(t *testing.T) {
		_, err := l.MarkInstallmentPaid(ctx, installments[0].ID, paidDate)
		require.Error(t, err)
		assert.ErrorIs(t, err, ledger.ErrAlreadyPaid)
		assert.True(t, ledger.IsConflict(err))

		// The original paid date survives.
		stored, err := mem.Installment(ctx, installments[0].ID)
		require.NoError(t, err)
		require.NotNil(t, stored.PaidDate)
		assert.True(t, stored.PaidDate.Equal(paidDate))
	})

	t.Run("missing paid date", func(t *testing.T) {
		_, err := l.MarkInstallmentPaid(ctx, installments[1].ID, ledger.Date{})
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("unknown installment", func(t *testing.T) {
		_, err := l.MarkInstallmentPaid(ctx, "no-such-installment", paidDate)
		assert.True(t, ledger.IsNotFound(err), "got %v", err)
	})
}

func TestLedger_MarkInstallmentPaid_ConcurrentDoublePay(t *testing.T) {
	// GIVEN: one unpaid installment and N racing payers
	// THEN: exactly one succeeds, everyone else gets the already-paid error
	mem := seedCatalog(t)
	l := ledger.NewLedger(mem, mem)
	ctx := context.Background()

	in := cashExitInput()
	in.PaymentMethod = ledger.PaymentInstallment
	in.Installments = &ledger.InstallmentConfig{
		Count:        1,
		FirstDueDate: ledger.NewDate(2024, time.April, 1),
	}
	_, installments, err := l.CreateExit(ctx, in)
	require.NoError(t, err)
	target := installments[0].ID

	const workers = 16
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.MarkInstallmentPaid(ctx, target, ledger.NewDate(2024, time.April, 3))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case ledger.IsConflict(err):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)
}
