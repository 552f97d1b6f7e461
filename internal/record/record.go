// Package record defines the domain record the ledger tracks: a single
// dated transaction scoped to a project.
package record

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the symbol used when configuration names none.
const DefaultCurrency = "RD$"

// DateLayout is the canonical day-precision form for transaction dates.
// Stores, importers, and labels all format dates with it.
const DateLayout = "2006-01-02"

// Validation errors.
var (
	ErrMissingProject     = errors.New("transaction project is required")
	ErrMissingDate        = errors.New("transaction date is required")
	ErrNonPositiveAmount  = errors.New("transaction amount must be positive")
	ErrInvalidKind        = errors.New("transaction kind must be income or expense")
	ErrMissingDescription = errors.New("transaction description is required")
)

// Kind classifies a transaction as money in or money out.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// ParseKind maps user and import vocabulary onto a Kind. Spanish aliases
// are accepted because exported data commonly carries them.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "ingreso", "ingresos":
		return Income, nil
	case "expense", "gasto", "gastos":
		return Expense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Transaction is one ledger entry. ID is assigned by the store on
// create; a zero ID marks a record that has not been stored.
type Transaction struct {
	ID          string
	Project     string
	Date        time.Time
	Amount      float64
	Kind        Kind
	Category    string
	Account     string
	Description string
}

// Validate checks the fields a store requires. It returns the first
// problem found.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Project) == "" {
		return ErrMissingProject
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if t.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrMissingDescription
	}
	return nil
}

// Fingerprint returns a stable hash of the fields that define a
// duplicate: date, normalized description, and amount.
func (t Transaction) Fingerprint() string {
	base := fmt.Sprintf("%s|%s|%.2f",
		t.Date.Format(DateLayout),
		strings.ToLower(strings.TrimSpace(t.Description)),
		t.Amount)
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}

// amountPrinter groups digits per English locale conventions.
var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with grouping separators and two
// decimals behind the currency symbol: "RD$1,500.00".
func FormatAmount(symbol string, amount float64) string {
	return symbol + amountPrinter.Sprintf("%.2f", amount)
}

// Label renders the one-line description used by command descriptions
// and list views. Long descriptions are truncated at 30 runes.
func (t Transaction) Label(symbol string) string {
	desc := t.Description
	if utf8.RuneCountInString(desc) > 30 {
		desc = string([]rune(desc)[:30])
	}
	return fmt.Sprintf("%s %s %s - %s",
		t.Date.Format(DateLayout), t.Kind, FormatAmount(symbol, t.Amount), desc)
}
