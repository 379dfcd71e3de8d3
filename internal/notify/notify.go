// Package notify delivers user and admin messages to the chat front end.
package notify

import "context"

// Button is an inline action attached to a photo. Payload is an encoded
// actions.Action.
type Button struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// Channel is the outbound side of the bot. Callers treat every send as
// fire-and-forget and swallow failures per recipient.
type Channel interface {
	SendText(ctx context.Context, recipientID int64, text string) error
	SendPhoto(ctx context.Context, recipientID int64, photoToken, caption string, buttons []Button) error
}
