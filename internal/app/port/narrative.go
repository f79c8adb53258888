package port

import (
	"context"

	"wallet_report/internal/domain/entity"
)

// NarrativeClient turns an ordered list of chat messages into a single text completion.
type NarrativeClient interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
	Provider() string
}
