// Package export streams read-only CSV snapshots of the ledger and the
// movement log. Exporters never mutate state.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bodega-ims/bodega-ims/internal/inventory"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// CSVStreamer writes CSV rows with periodic flushing for large exports.
type CSVStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

// NewCSVStreamer wraps w with buffered CSV writing.
func NewCSVStreamer(w io.Writer) *CSVStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &CSVStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

// WriteRow appends one CSV record.
func (s *CSVStreamer) WriteRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

// Flush forces buffered rows out.
func (s *CSVStreamer) Flush() error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	s.pendingLines = 0
	return s.buf.Flush()
}

// MovementsCSV streams the movement log. Rows follow display order as
// provided (most recent first).
func MovementsCSV(w io.Writer, movements []inventory.Movement) error {
	streamer := NewCSVStreamer(w)
	header := []string{"id", "timestamp", "sku", "product", "warehouse", "type", "quantity_change", "new_quantity", "details", "actor", "transaction_id"}
	if err := streamer.WriteRow(header); err != nil {
		return err
	}
	for _, m := range movements {
		row := []string{
			m.ID,
			m.Timestamp.Format(time.RFC3339),
			m.SKU,
			m.ProductName,
			m.WarehouseName,
			string(m.Type),
			strconv.FormatInt(m.QuantityChange, 10),
			strconv.FormatInt(m.NewQuantity, 10),
			m.Details,
			m.Actor,
			m.TransactionID,
		}
		if err := streamer.WriteRow(row); err != nil {
			return err
		}
	}
	return streamer.Flush()
}

// LedgerCSV streams the current ledger snapshot.
func LedgerCSV(w io.Writer, entries []inventory.LedgerEntry) error {
	streamer := NewCSVStreamer(w)
	if err := streamer.WriteRow([]string{"product_id", "warehouse_id", "quantity"}); err != nil {
		return err
	}
	for _, entry := range entries {
		row := []string{entry.ProductID, entry.WarehouseID, strconv.FormatInt(entry.Quantity, 10)}
		if err := streamer.WriteRow(row); err != nil {
			return err
		}
	}
	return streamer.Flush()
}
