package supabase

import (
	"testing"
	"time"

	"github.com/ledesma/centavo/internal/record"
)

func TestNewRequiresCredentials(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"empty", Options{}},
		{"missing key", Options{URL: "https://example.supabase.co"}},
		{"missing url", Options{Key: "service-key"}},
		{"blank values", Options{URL: "  ", Key: "  "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.opts); err == nil {
				t.Error("New succeeded without credentials")
			}
		})
	}
}

func TestNewDefaultsTable(t *testing.T) {
	s, err := New(Options{URL: "https://example.supabase.co", Key: "service-key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.table != DefaultTable {
		t.Errorf("table = %q, want %q", s.table, DefaultTable)
	}

	named, err := New(Options{URL: "https://example.supabase.co", Key: "service-key", Table: "ledger"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if named.table != "ledger" {
		t.Errorf("table = %q, want %q", named.table, "ledger")
	}
}

func TestRowRoundTrip(t *testing.T) {
	row := txRow{
		ID:          "11111111-2222-3333-4444-555555555555",
		Project:     "household",
		Date:        "2025-03-10",
		Amount:      1500.50,
		Kind:        "income",
		Category:    "salary",
		Account:     "checking",
		Description: "march salary",
	}
	tx, err := row.transaction()
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if !tx.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v, want 2025-03-10", tx.Date)
	}
	if tx.Kind != record.Income {
		t.Errorf("Kind = %q, want %q", tx.Kind, record.Income)
	}
	if tx.Amount != 1500.50 {
		t.Errorf("Amount = %v, want 1500.50", tx.Amount)
	}
}

func TestRowRejectsBadDate(t *testing.T) {
	row := txRow{ID: "x", Date: "10/03/2025"}
	if _, err := row.transaction(); err == nil {
		t.Error("transaction accepted a malformed date")
	}
}

func TestEmptyResult(t *testing.T) {
	cases := []struct {
		data string
		want bool
	}{
		{"", true},
		{"  ", true},
		{"[]", true},
		{" [] ", true},
		{`[{"id":"a"}]`, false},
	}
	for _, tc := range cases {
		if got := emptyResult([]byte(tc.data)); got != tc.want {
			t.Errorf("emptyResult(%q) = %v, want %v", tc.data, got, tc.want)
		}
	}
}
