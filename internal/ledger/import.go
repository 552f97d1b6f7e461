package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ledesma/centavo/internal/record"
)

// importDateLayouts are the date forms an export may carry. The legacy
// exporter wrote day/month/year.
var importDateLayouts = []string{record.DateLayout, "02/01/2006"}

// RowError describes one rejected row in an import payload.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ImportError reports every row an import payload rejected.
type ImportError struct {
	Rows []*RowError
}

func (e *ImportError) Error() string {
	if e == nil || len(e.Rows) == 0 {
		return "import: no errors"
	}
	if len(e.Rows) == 1 {
		return fmt.Sprintf("import: %v", e.Rows[0])
	}
	return fmt.Sprintf("import: %d rows rejected, first: %v", len(e.Rows), e.Rows[0])
}

// ParseImport reads a JSON export and returns its transactions,
// stamped with project.
//
// The payload is either a bare array or an object wrapping one under
// "transactions". Legacy Spanish field names (fecha, monto, tipo,
// categoria, cuenta, descripcion) are accepted alongside the current
// ones, and amounts may be numbers or numeric strings. Rows that fail
// validation are reported together in an *ImportError; the valid rows
// are still returned so callers can decide whether to proceed.
func ParseImport(data []byte, project string) ([]record.Transaction, error) {
	root := gjson.ParseBytes(data)
	rows := root
	if root.IsObject() {
		rows = root.Get("transactions")
	}
	if !rows.IsArray() {
		return nil, fmt.Errorf("import payload is not a transaction array")
	}

	var txs []record.Transaction
	var rejected []*RowError
	for i, item := range rows.Array() {
		tx, err := importRow(item, project)
		if err != nil {
			rejected = append(rejected, &RowError{Index: i, Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	if len(rejected) > 0 {
		return txs, &ImportError{Rows: rejected}
	}
	return txs, nil
}

func importRow(item gjson.Result, project string) (record.Transaction, error) {
	tx := record.Transaction{Project: project}

	if date := pick(item, "date", "fecha"); date.Exists() {
		parsed, err := parseImportDate(date.String())
		if err != nil {
			return tx, err
		}
		tx.Date = parsed
	}
	if amount := pick(item, "amount", "monto"); amount.Exists() {
		tx.Amount = amount.Float()
	}
	if kind := pick(item, "kind", "tipo"); kind.Exists() {
		parsed, err := record.ParseKind(kind.String())
		if err != nil {
			return tx, err
		}
		tx.Kind = parsed
	}
	tx.Category = pick(item, "category", "categoria").String()
	tx.Account = pick(item, "account", "cuenta").String()
	tx.Description = strings.TrimSpace(pick(item, "description", "descripcion").String())

	if err := tx.Validate(); err != nil {
		return tx, err
	}
	return tx, nil
}

// pick returns the first key present on item.
func pick(item gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if value := item.Get(key); value.Exists() {
			return value
		}
	}
	return gjson.Result{}
}

func parseImportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
