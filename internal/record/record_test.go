package record

import (
	"errors"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		Project:     "general",
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:      1500,
		Kind:        Income,
		Category:    "salary",
		Account:     "checking",
		Description: "march paycheck",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(tx *Transaction) {}, nil},
		{"missing project", func(tx *Transaction) { tx.Project = " " }, ErrMissingProject},
		{"missing date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrMissingDate},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, ErrNonPositiveAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = -5 }, ErrNonPositiveAmount},
		{"bad kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{"missing description", func(tx *Transaction) { tx.Description = "" }, ErrMissingDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"income", Income, false},
		{"Ingreso", Income, false},
		{"GASTOS", Expense, false},
		{" expense ", Expense, false},
		{"transfer", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidKind) {
				t.Errorf("ParseKind(%q) error = %v, want %v", tt.in, err, ErrInvalidKind)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFingerprintStability(t *testing.T) {
	a := validTransaction()
	b := validTransaction()
	b.ID = "different-id"
	b.Category = "other"
	b.Account = "savings"
	b.Description = "  MARCH Paycheck "

	// Identity fields match after normalization, so the fingerprints do.
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("fingerprints differ for equivalent transactions")
	}

	c := validTransaction()
	c.Amount = 1500.01
	if a.Fingerprint() == c.Fingerprint() {
		t.Errorf("fingerprints match for different amounts")
	}

	d := validTransaction()
	d.Date = d.Date.AddDate(0, 0, 1)
	if a.Fingerprint() == d.Fingerprint() {
		t.Errorf("fingerprints match for different dates")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{1500, "RD$1,500.00"},
		{75.5, "RD$75.50"},
		{1234567.891, "RD$1,234,567.89"},
	}

	for _, tt := range tests {
		if got := FormatAmount("RD$", tt.amount); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	tx := validTransaction()
	want := "2025-03-10 income RD$1,500.00 - march paycheck"
	if got := tx.Label("RD$"); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestLabelTruncatesDescription(t *testing.T) {
	tx := validTransaction()
	tx.Description = "a very long description that keeps going well past the cut"
	got := tx.Label("RD$")
	want := "2025-03-10 income RD$1,500.00 - a very long description that k"
	if got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}
