package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/julianstephens/proofstreak/internal/constants"
)

const (
	KindText  = "text"
	KindPhoto = "photo"
)

// WebhookPayload is the JSON body posted to the bot gateway.
type WebhookPayload struct {
	Kind        string   `json:"kind"`
	RecipientID int64    `json:"recipient_id"`
	Text        string   `json:"text,omitempty"`
	PhotoToken  string   `json:"photo_token,omitempty"`
	Caption     string   `json:"caption,omitempty"`
	Buttons     []Button `json:"buttons,omitempty"`
}

// Webhook posts each message to a bot gateway that owns the chat protocol.
type Webhook struct {
	url    string
	secret string
	client *http.Client
}

func NewWebhook(url, secret string) (*Webhook, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("webhook url is required")
	}
	return &Webhook{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: constants.NotifyTimeout},
	}, nil
}

func (w *Webhook) SendText(ctx context.Context, recipientID int64, text string) error {
	return w.send(ctx, WebhookPayload{Kind: KindText, RecipientID: recipientID, Text: text})
}

func (w *Webhook) SendPhoto(ctx context.Context, recipientID int64, photoToken, caption string, buttons []Button) error {
	return w.send(ctx, WebhookPayload{
		Kind:        KindPhoto,
		RecipientID: recipientID,
		PhotoToken:  photoToken,
		Caption:     caption,
		Buttons:     buttons,
	})
}

func (w *Webhook) send(ctx context.Context, payload WebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set(constants.NotifySecretHeader, w.secret)
	}

	res, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification to %d failed with status %d: %s", payload.RecipientID, res.StatusCode, strings.TrimSpace(string(body)))
}
