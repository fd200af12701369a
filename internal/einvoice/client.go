package einvoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// Submission statuses reported by the tax authority endpoint.
const (
	StatusAccepted = "ACCEPTED"
	StatusPending  = "PENDING"
)

// SubmitRequest describes one stock exit reported for fiscal invoicing.
type SubmitRequest struct {
	MovementID    string    `json:"movement_id"`
	SKU           string    `json:"sku"`
	ProductName   string    `json:"product_name"`
	WarehouseName string    `json:"warehouse_name"`
	Quantity      int64     `json:"quantity"`
	Details       string    `json:"details"`
	Actor         string    `json:"actor"`
	PostedAt      time.Time `json:"posted_at"`
}

// SubmitResult is the provider's acknowledgement.
type SubmitResult struct {
	TicketID    string    `json:"ticket_id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Client talks to the electronic invoicing provider. The integration is
// simulated: submissions are validated, acknowledged with a ticket and
// logged, but never leave the process.
type Client struct {
	logger *slog.Logger
}

// NewClient constructs the simulated provider client.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

// Submit reports one exit. Invalid submissions are rejected the way the
// real provider would reject them, so retry behavior can be exercised.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}
	if req.MovementID == "" {
		return SubmitResult{}, fmt.Errorf("%w: movement id is required", shared.ErrValidation)
	}
	if req.SKU == "" {
		return SubmitResult{}, fmt.Errorf("%w: sku is required", shared.ErrValidation)
	}
	if req.Quantity <= 0 {
		return SubmitResult{}, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	result := SubmitResult{
		TicketID:    "EINV-" + uuid.NewString(),
		Status:      StatusAccepted,
		SubmittedAt: time.Now().UTC(),
	}
	c.logger.Info("e-invoice submitted",
		slog.String("ticket_id", result.TicketID),
		slog.String("movement_id", req.MovementID),
		slog.String("sku", req.SKU),
		slog.Int64("quantity", req.Quantity),
	)
	return result, nil
}
