package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
)

// allowMethod writes a 405 and returns false unless r uses one of methods.
func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	MethodNotAllowedError(strings.Join(methods, ", ")).Write(w)
	return false
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// periodKey identifies the calendar month containing t, e.g. "2024-03".
func periodKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// attachmentName keeps only the base name so a configured report name can
// never steer the browser into a directory.
func attachmentName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return report.DefaultFileName
	}
	return base
}

var errExportName = errors.New("export name must be a bare file name")

// exportTarget joins a browser-supplied file name onto dir, refusing
// anything that could leave it.
func exportTarget(dir, name string) (string, error) {
	if name == "." || name == ".." || filepath.IsAbs(name) ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", errExportName, name)
	}
	return filepath.Join(dir, name), nil
}

type transactionRow struct {
	Date     string
	Kind     string
	Category string
	Amount   string
	Class    string
}

// toRows keeps ledger insertion order.
func toRows(txs []core.Transaction, symbol string) []transactionRow {
	rows := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRow{
			Date:     tx.Date.String(),
			Kind:     string(tx.Kind),
			Category: string(tx.Category),
			Amount:   tx.Amount.Format(symbol),
			Class:    strings.ToLower(string(tx.Kind)),
		})
	}
	return rows
}
