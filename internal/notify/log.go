package notify

import (
	"context"

	"github.com/julianstephens/proofstreak/internal/logger"
)

// Log writes messages to the application log instead of delivering them.
// Used when no webhook is configured and for dry runs.
type Log struct{}

func (Log) SendText(_ context.Context, recipientID int64, text string) error {
	logger.Info("notify text", "recipient", recipientID, "text", text)
	return nil
}

func (Log) SendPhoto(_ context.Context, recipientID int64, photoToken, caption string, buttons []Button) error {
	payloads := make([]string, 0, len(buttons))
	for _, b := range buttons {
		payloads = append(payloads, b.Payload)
	}
	logger.Info("notify photo", "recipient", recipientID, "photo", photoToken, "caption", caption, "buttons", payloads)
	return nil
}
