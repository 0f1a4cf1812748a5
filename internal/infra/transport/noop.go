package transport

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Noop is a no-delivery implementation of the Transport interface.
// It is used for dry runs: messages are logged instead of sent, and each
// call returns a receipt with a locally assigned message id.
type Noop struct {
	nextID atomic.Int64
}

// NewNoop creates a new Noop transport.
func NewNoop() *Noop {
	return &Noop{}
}

// SendText logs the message and returns a synthetic receipt.
func (n *Noop) SendText(ctx context.Context, target, text string) (*DeliveryReceipt, error) {
	slog.Info("dry-run text delivery",
		slog.String("target", target),
		slog.Int("length", len(text)))

	return &DeliveryReceipt{
		MessageID: n.nextID.Add(1),
		Target:    target,
		SentAt:    time.Now(),
	}, nil
}

// SendPhoto logs the photo delivery and returns a synthetic receipt.
func (n *Noop) SendPhoto(ctx context.Context, target string, photo []byte, caption string) (*DeliveryReceipt, error) {
	slog.Info("dry-run photo delivery",
		slog.String("target", target),
		slog.Int("photo_bytes", len(photo)),
		slog.Int("caption_length", len(caption)))

	return &DeliveryReceipt{
		MessageID: n.nextID.Add(1),
		Target:    target,
		SentAt:    time.Now(),
	}, nil
}
