package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodega-ims/bodega-ims/internal/inventory"
)

func TestMovementsCSV(t *testing.T) {
	posted := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	movements := []inventory.Movement{
		{
			ID:             "mov-1",
			Timestamp:      posted,
			SKU:            "SKU-001",
			ProductName:    "Yerba Mate 1kg",
			WarehouseName:  "Central",
			Type:           inventory.MovementExit,
			QuantityChange: -5,
			NewQuantity:    45,
			Details:        "sale, invoice 88",
			Actor:          "ana",
			TransactionID:  "tx-1",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, MovementsCSV(&buf, movements))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, []string{"id", "timestamp", "sku", "product", "warehouse", "type", "quantity_change", "new_quantity", "details", "actor", "transaction_id"}, records[0])
	require.Equal(t, []string{"mov-1", "2026-03-14T09:30:00Z", "SKU-001", "Yerba Mate 1kg", "Central", "EXIT", "-5", "45", "sale, invoice 88", "ana", "tx-1"}, records[1])
}

func TestMovementsCSVUsesCRLF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MovementsCSV(&buf, nil))
	require.True(t, strings.HasSuffix(buf.String(), "\r\n"))
}

func TestLedgerCSV(t *testing.T) {
	entries := []inventory.LedgerEntry{
		{ProductID: "p-1", WarehouseID: "w-1", Quantity: 10},
		{ProductID: "p-1", WarehouseID: "w-2", Quantity: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, LedgerCSV(&buf, entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"product_id", "warehouse_id", "quantity"}, records[0])
	require.Equal(t, []string{"p-1", "w-2", "0"}, records[2])
}

func TestCSVStreamerFlushEvery(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVStreamer(&buf)
	s.flushEvery = 2

	require.NoError(t, s.WriteRow([]string{"a"}))
	require.Zero(t, buf.Len())
	require.NoError(t, s.WriteRow([]string{"b"}))
	require.NotZero(t, buf.Len())
}
