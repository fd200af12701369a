package inventory

import (
	"context"
	"time"
)

// ExitPostedEvent carries the denormalized fields of a committed EXIT
// movement for downstream e-invoicing. The movement is already final when
// this event fires; delivery failures never roll it back.
type ExitPostedEvent struct {
	MovementID    string    `json:"movement_id"`
	SKU           string    `json:"sku"`
	ProductName   string    `json:"product_name"`
	WarehouseName string    `json:"warehouse_name"`
	Quantity      int64     `json:"quantity"`
	Details       string    `json:"details,omitempty"`
	Actor         string    `json:"actor"`
	PostedAt      time.Time `json:"posted_at"`
}

// ExitHandler receives exit events for fire-and-forget integrations.
type ExitHandler interface {
	HandleExitPosted(ctx context.Context, evt ExitPostedEvent) error
}
