package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bodega-ims/bodega-ims/internal/einvoice"
	jobmetrics "github.com/bodega-ims/bodega-ims/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeEInvoiceSubmit reports a stock exit to the e-invoicing provider.
	TaskTypeEInvoiceSubmit = "einvoice:submit"
)

// EInvoicePayload carries one exit movement to the worker.
type EInvoicePayload struct {
	MovementID    string    `json:"movement_id"`
	SKU           string    `json:"sku"`
	ProductName   string    `json:"product_name"`
	WarehouseName string    `json:"warehouse_name"`
	Quantity      int64     `json:"quantity"`
	Details       string    `json:"details"`
	Actor         string    `json:"actor"`
	PostedAt      time.Time `json:"posted_at"`
}

// NewEInvoiceTask constructs an Asynq task.
func NewEInvoiceTask(payload EInvoicePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeEInvoiceSubmit, data, asynq.MaxRetry(5)), nil
}

// NewEInvoiceHandler builds the handler processing TaskTypeEInvoiceSubmit.
// Malformed payloads are dropped; provider errors trigger a retry.
func NewEInvoiceHandler(client *einvoice.Client, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeEInvoiceSubmit)
		var payload EInvoicePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(asynq.SkipRetry)
		}
		result, err := client.Submit(ctx, einvoice.SubmitRequest{
			MovementID:    payload.MovementID,
			SKU:           payload.SKU,
			ProductName:   payload.ProductName,
			WarehouseName: payload.WarehouseName,
			Quantity:      payload.Quantity,
			Details:       payload.Details,
			Actor:         payload.Actor,
			PostedAt:      payload.PostedAt,
		})
		if err != nil {
			return tracker.End(err)
		}
		logger.Info("e-invoice task done",
			slog.String("movement_id", payload.MovementID),
			slog.String("ticket_id", result.TicketID),
		)
		return tracker.End(nil)
	}
}
