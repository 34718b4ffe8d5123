package ledger_test

import (
	"testing"
	"time"

	"github.com/warp/ledger-engine/ledger"
)

func TestParseDate(t *testing.T) {
	d, err := ledger.ParseDate("2024-01-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Time.Year() != 2024 || d.Time.Month() != time.January || d.Time.Day() != 31 {
		t.Errorf("ParseDate = %v", d)
	}

	if _, err := ledger.ParseDate("31/01/2024"); err == nil {
		t.Error("ParseDate should reject non ISO input")
	}
}

func TestDate_AddMonths_ClampsToEndOfMonth(t *testing.T) {
	// GIVEN: an anchor on the 31st
	// WHEN: stepping month by month
	// THEN: short months clamp to their last day, and the clamp does not
	// stick once a long month comes back around.
	anchor := ledger.NewDate(2024, time.January, 31)

	cases := []struct {
		months int
		want   ledger.Date
	}{
		{0, ledger.NewDate(2024, time.January, 31)},
		{1, ledger.NewDate(2024, time.February, 29)}, // leap year
		{2, ledger.NewDate(2024, time.March, 31)},
		{3, ledger.NewDate(2024, time.April, 30)},
		{13, ledger.NewDate(2025, time.February, 28)},
	}

	for _, tc := range cases {
		got := anchor.AddMonths(tc.months)
		if !got.Equal(tc.want) {
			t.Errorf("AddMonths(%d) = %s, want %s", tc.months, got, tc.want)
		}
	}
}

func TestDate_AddMonths_PlainDays(t *testing.T) {
	d := ledger.NewDate(2024, time.March, 15)
	if got := d.AddMonths(1); !got.Equal(ledger.NewDate(2024, time.April, 15)) {
		t.Errorf("AddMonths(1) = %s", got)
	}
	if got := d.AddMonths(12); !got.Equal(ledger.NewDate(2025, time.March, 15)) {
		t.Errorf("AddMonths(12) = %s", got)
	}
}

func TestDate_Comparisons(t *testing.T) {
	a := ledger.NewDate(2024, time.May, 10)
	b := ledger.NewDate(2024, time.May, 11)

	if !a.Before(b) || b.Before(a) {
		t.Error("Before is wrong")
	}
	if !b.After(a) || a.After(b) {
		t.Error("After is wrong")
	}
	if !a.BeforeOrEqual(a) || !a.AfterOrEqual(a) {
		t.Error("OrEqual variants should include the same day")
	}
}
