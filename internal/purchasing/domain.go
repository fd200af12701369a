package purchasing

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusDraft     POStatus = "DRAFT"
	POStatusIssued    POStatus = "ISSUED"
	POStatusReceived  POStatus = "RECEIVED"
	POStatusCancelled POStatus = "CANCELLED"
)

// ErrInvalidState occurs when an action violates the status workflow.
var ErrInvalidState = errors.New("purchasing: invalid state transition")

// POItem is one ordered line. Name and SKU are snapshots taken when the
// order was drafted; a later catalog rename does not rewrite history.
type POItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// PurchaseOrder domain model.
type PurchaseOrder struct {
	ID                     string     `json:"id"`
	OrderNumber            string     `json:"orderNumber"`
	SupplierID             string     `json:"supplierId"`
	IssuingCompanyID       string     `json:"issuingCompanyId"`
	DestinationWarehouseID string     `json:"destinationWarehouseId"`
	Status                 POStatus   `json:"status"`
	Items                  []POItem   `json:"items"`
	Notes                  string     `json:"notes"`
	ExpectedDelivery       *time.Time `json:"expectedDelivery,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
	IssuedAt               *time.Time `json:"issuedAt,omitempty"`
	ReceivedAt             *time.Time `json:"receivedAt,omitempty"`
	CancelledAt            *time.Time `json:"cancelledAt,omitempty"`
}

// Total derives the order value from its lines.
func (po PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range po.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total
}

// MarshalJSON includes the derived total alongside the stored fields.
func (po PurchaseOrder) MarshalJSON() ([]byte, error) {
	type alias PurchaseOrder
	return json.Marshal(struct {
		alias
		Total decimal.Decimal `json:"total"`
	}{alias(po), po.Total()})
}

// OrderItemInput is the writable form of one line.
type OrderItemInput struct {
	ProductID string
	Quantity  int64
	Price     decimal.Decimal
	// PriceSet distinguishes an explicit zero price from an omitted one;
	// omitted prices snapshot the catalog price.
	PriceSet bool
}

// OrderInput carries the writable order fields.
type OrderInput struct {
	SupplierID             string
	IssuingCompanyID       string
	DestinationWarehouseID string
	Items                  []OrderItemInput
	Notes                  string
	ExpectedDelivery       *time.Time
}

// OrderFilter narrows ListOrders.
type OrderFilter struct {
	Status     POStatus
	SupplierID string
}
