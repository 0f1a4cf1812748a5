// Package transport abstracts message delivery to the destination channel.
// It defines the Transport interface which allows the real Telegram Bot API
// client and test doubles to be used interchangeably through dependency
// injection.
//
// The package includes a Telegram implementation and a no-op transport for
// dry runs.
package transport

import (
	"context"
	"time"
)

const (
	// CaptionLimit is the maximum caption length Telegram accepts on a
	// photo message, in UTF-8 characters.
	CaptionLimit = 1024

	// MessageLimit is the maximum text length Telegram accepts on a plain
	// message, in UTF-8 characters.
	MessageLimit = 4096
)

// DeliveryReceipt describes one successfully delivered message.
type DeliveryReceipt struct {
	// MessageID is the provider-assigned identifier of the delivered message.
	MessageID int64

	// Target is the chat or channel the message was delivered to.
	Target string

	// SentAt is the local time the delivery call returned.
	SentAt time.Time
}

// Transport sends messages to a chat or channel.
// Implementations should handle rate limiting, retries, and error logging
// internally.
type Transport interface {
	// SendText delivers a plain text message to the target.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - target: Chat or channel identifier (e.g. "@channel" or a numeric id)
	//   - text: Message body, at most MessageLimit characters
	//
	// Returns:
	//   - *DeliveryReceipt: Receipt for the delivered message
	//   - error: Non-nil if delivery failed after all retry attempts
	SendText(ctx context.Context, target, text string) (*DeliveryReceipt, error)

	// SendPhoto delivers a photo with an optional caption to the target.
	// The caption must be at most CaptionLimit characters.
	SendPhoto(ctx context.Context, target string, photo []byte, caption string) (*DeliveryReceipt, error)
}
