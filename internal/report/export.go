package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
)

// ErrExportFailed is returned for every export failure. The underlying cause
// is wrapped for logging but is not meant to be shown to the user.
var ErrExportFailed = errors.New("failed to save report")

// Exporter writes report files.
type Exporter struct {
	Symbol string
}

func NewExporter(symbol string) *Exporter {
	if symbol == "" {
		symbol = core.DefaultCurrencySymbol
	}
	return &Exporter{Symbol: symbol}
}

// Export writes the report for t to path, replacing any existing file. The
// content is staged in a temporary file next to path and renamed into place,
// so a reader sees either the old file or the complete new one.
func (e *Exporter) Export(path string, t core.MonthTotals) (err error) {
	if path == "" {
		path = DefaultFileName
	}
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrExportFailed, path)
		}
		// An existing file keeps its permissions.
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, werr := tmp.Write(FileContent(t, e.Symbol)); werr != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write: %w", ErrExportFailed, werr)
	}
	if serr := tmp.Sync(); serr != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync: %w", ErrExportFailed, serr)
	}
	if cerr := tmp.Close(); cerr != nil {
		return fmt.Errorf("%w: close: %w", ErrExportFailed, cerr)
	}
	if cerr := os.Chmod(tmp.Name(), mode); cerr != nil {
		return fmt.Errorf("%w: chmod: %w", ErrExportFailed, cerr)
	}
	if rerr := os.Rename(tmp.Name(), path); rerr != nil {
		return fmt.Errorf("%w: rename: %w", ErrExportFailed, rerr)
	}
	return nil
}
