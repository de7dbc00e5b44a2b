package service

import (
	"context"
	"encoding/json"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	ReceiptMessageType = "stock_receipt"
	receiptActor       = "procurement"
)

// ReceiptMessage is what procurement publishes on the receipts topic when
// goods arrive at a warehouse.
type ReceiptMessage struct {
	Type        string        `json:"type"`
	TenantID    string        `json:"tenant_id"`
	ReceiptID   string        `json:"receipt_id"`
	WarehouseID string        `json:"warehouse_id"`
	Lines       []ReceiptLine `json:"lines"`
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// ReceiptConsumer turns procurement receipts into purchase movements.
type ReceiptConsumer struct {
	Reader MessageReader
	Ledger *StockLedger
	Logger *zap.Logger
}

func NewReceiptConsumer(reader MessageReader, ledger *StockLedger, logger *zap.Logger) *ReceiptConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptConsumer{
		Reader: reader,
		Ledger: ledger,
		Logger: logger,
	}
}

// Start reads until ctx is cancelled. Bad messages are logged and skipped.
func (c *ReceiptConsumer) Start(ctx context.Context) {
	c.Logger.Info("starting receipts consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.Logger.Info("receipts consumer stopped")
				return
			}
			c.Logger.Error("read receipt message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var msg ReceiptMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			c.Logger.Warn("unmarshal receipt message", zap.Int64("offset", message.Offset), zap.Error(err))
			continue
		}
		if msg.Type != ReceiptMessageType {
			continue
		}
		if err := c.ProcessReceipt(ctx, msg); err != nil {
			c.Logger.Error("process receipt",
				zap.String("tenant_id", msg.TenantID), zap.String("receipt_id", msg.ReceiptID), zap.Error(err))
		}
	}
}

func (c *ReceiptConsumer) ProcessReceipt(ctx context.Context, msg ReceiptMessage) error {
	if err := validateReceipt(msg); err != nil {
		return err
	}
	posted, err := c.Ledger.receive(ctx, msg.TenantID, msg.ReceiptID, msg.WarehouseID, msg.Lines)
	if err != nil {
		return err
	}
	if !posted {
		c.Logger.Info("receipt already booked", zap.String("tenant_id", msg.TenantID), zap.String("receipt_id", msg.ReceiptID))
		return nil
	}
	c.Logger.Info("receipt booked",
		zap.String("tenant_id", msg.TenantID), zap.String("receipt_id", msg.ReceiptID), zap.Int("lines", len(msg.Lines)))
	return nil
}

func validateReceipt(msg ReceiptMessage) error {
	if msg.TenantID == "" || msg.ReceiptID == "" || msg.WarehouseID == "" {
		return domain.Validation("receipt needs tenant, receipt id and warehouse")
	}
	if len(msg.Lines) == 0 {
		return domain.Validation("receipt %s has no lines", msg.ReceiptID)
	}
	for _, l := range msg.Lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() || l.UnitCost < 0 {
			return domain.Validation("receipt %s has an invalid line for %q", msg.ReceiptID, l.ProductID)
		}
	}
	return nil
}
