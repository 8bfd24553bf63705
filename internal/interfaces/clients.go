// Package interfaces defines service contracts for GiftScan
package interfaces

import (
	"context"

	"github.com/bobmcallan/giftscan/internal/models"
)

// QuoteClient retrieves a fundamentals snapshot from the quote provider.
type QuoteClient interface {
	// GetSnapshot fetches a point-in-time snapshot for a bare ticker symbol.
	// The client appends the configured market suffix before calling out.
	GetSnapshot(ctx context.Context, symbol string) (*models.Snapshot, error)
}

// Notifier delivers text messages and file attachments to a chat destination.
type Notifier interface {
	// SendMessage sends one text message to the chat.
	SendMessage(ctx context.Context, chatID, text string) error

	// SendDocument sends a file attachment to the chat.
	SendDocument(ctx context.Context, chatID, filename string, contents []byte) error
}
