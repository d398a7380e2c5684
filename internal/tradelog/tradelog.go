// Package tradelog persists one append-only CSV row per closed trade.
// The file survives restarts; rows are flushed on every write so a
// crash loses at most the trade being written.
package tradelog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

var header = []string{
	"order_id", "symbol", "direction", "size",
	"entry_price", "exit_price", "pnl", "close_reason",
	"opened_at", "closed_at",
}

// Writer appends trade records to a CSV file.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	csv  *csv.Writer
}

// NewWriter opens (or creates) the trade log at path, writing the
// header only when the file is new.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeTradeLogWrite, err, "creating trade log directory %s", dir)
		}
	}

	info, statErr := os.Stat(path)
	isNew := statErr != nil || info.Size() == 0

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeTradeLogWrite, err, "opening trade log %s", path)
	}

	writer := &Writer{
		file: file,
		csv:  csv.NewWriter(file),
	}

	if isNew {
		if err := writer.csv.Write(header); err != nil {
			file.Close()

			return nil, errors.Wrap(errors.ErrCodeTradeLogWrite, "writing trade log header", err)
		}

		writer.csv.Flush()
	}

	return writer, nil
}

// Append writes one record and flushes it to disk.
func (w *Writer) Append(record types.TradeRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	row := []string{
		record.OrderID,
		record.Symbol,
		string(record.Direction),
		strconv.FormatFloat(record.Size, 'f', -1, 64),
		strconv.FormatFloat(record.EntryPrice, 'f', -1, 64),
		strconv.FormatFloat(record.ExitPrice, 'f', -1, 64),
		strconv.FormatFloat(record.PnL, 'f', 2, 64),
		record.CloseReason,
		record.OpenedAt.UTC().Format(time.RFC3339),
		record.ClosedAt.UTC().Format(time.RFC3339),
	}

	if err := w.csv.Write(row); err != nil {
		return errors.Wrapf(errors.ErrCodeTradeLogWrite, err, "writing trade record for order %s", record.OrderID)
	}

	w.csv.Flush()

	return w.csv.Error()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()

		return err
	}

	return w.file.Close()
}

// Read loads every record from a trade log file, for reporting tools
// and tests.
func Read(path string) ([]types.TradeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeTradeLogWrite, err, "opening trade log %s", path)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTradeLogWrite, "reading trade log", err)
	}

	records := make([]types.TradeRecord, 0, len(rows))

	for i, row := range rows {
		if i == 0 || len(row) < len(header) {
			continue
		}

		size, _ := strconv.ParseFloat(row[3], 64)
		entry, _ := strconv.ParseFloat(row[4], 64)
		exit, _ := strconv.ParseFloat(row[5], 64)
		pnl, _ := strconv.ParseFloat(row[6], 64)
		openedAt, _ := time.Parse(time.RFC3339, row[8])
		closedAt, _ := time.Parse(time.RFC3339, row[9])

		records = append(records, types.TradeRecord{
			OrderID:     row[0],
			Symbol:      row[1],
			Direction:   types.Direction(row[2]),
			Size:        size,
			EntryPrice:  entry,
			ExitPrice:   exit,
			PnL:         pnl,
			CloseReason: row[7],
			OpenedAt:    openedAt,
			ClosedAt:    closedAt,
		})
	}

	return records, nil
}
