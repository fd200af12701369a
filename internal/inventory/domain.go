package inventory

import (
	"errors"
	"time"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementEntry represents an inbound movement.
	MovementEntry MovementType = "ENTRY"
	// MovementExit represents an outbound movement.
	MovementExit MovementType = "EXIT"
	// MovementAdjustment indicates a manual correction, either sign.
	MovementAdjustment MovementType = "ADJUSTMENT"
	// MovementCreation is the zero-effect record emitted when a product
	// enters the catalog.
	MovementCreation MovementType = "CREATION"
)

// LedgerEntry holds the current quantity of a product at one warehouse.
// Quantity is never negative. An entry persists at zero once created.
type LedgerEntry struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
}

// Movement is one immutable record in the append-only movement log.
// Product and warehouse names are captured at write time so the log stays
// historically accurate when catalog rows are renamed or deleted.
type Movement struct {
	ID             string       `json:"id"`
	Timestamp      time.Time    `json:"timestamp"`
	ProductID      string       `json:"product_id"`
	ProductName    string       `json:"product_name"`
	SKU            string       `json:"sku"`
	WarehouseID    string       `json:"warehouse_id,omitempty"`
	WarehouseName  string       `json:"warehouse_name,omitempty"`
	Type           MovementType `json:"type"`
	QuantityChange int64        `json:"quantity_change"`
	NewQuantity    int64        `json:"new_quantity"`
	Details        string       `json:"details,omitempty"`
	Actor          string       `json:"actor"`
	TransactionID  string       `json:"transaction_id,omitempty"`
}

// AdjustmentInput describes a manual stock change at one warehouse.
type AdjustmentInput struct {
	ProductID      string
	WarehouseID    string
	QuantityChange int64
	Type           MovementType
	Details        string
	Actor          string
}

// TransferInput describes a transfer between two warehouses.
type TransferInput struct {
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Details         string
	Actor           string
}

// BulkTransferItem is one product line within a bulk transfer.
type BulkTransferItem struct {
	ProductID string
	Quantity  int64
}

// BulkTransferInput moves several products between the same two warehouses
// as a single unit.
type BulkTransferInput struct {
	Items           []BulkTransferItem
	FromWarehouseID string
	ToWarehouseID   string
	Details         string
	Actor           string
}

// ReceiptLine is one purchase-order line to post as an inbound entry.
type ReceiptLine struct {
	ProductID string
	Quantity  int64
}

// ReceiptInput posts one ENTRY per line into a warehouse, all lines grouped
// under the caller-supplied transaction ID.
type ReceiptInput struct {
	WarehouseID   string
	Lines         []ReceiptLine
	Details       string
	Actor         string
	TransactionID string
}

// MovementFilter narrows movement log queries.
type MovementFilter struct {
	ProductID     string
	WarehouseID   string
	TransactionID string
	Type          MovementType
	Limit         int
}

// ErrInsufficientStock triggered when a removal exceeds available quantity
// at the source warehouse.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// ErrInvalidOperation indicates a rejected no-op or malformed movement
// (zero adjustment, non-positive transfer, same-warehouse transfer).
var ErrInvalidOperation = errors.New("inventory: invalid operation")
