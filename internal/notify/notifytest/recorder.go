// Package notifytest provides an in-memory notify.Channel for tests.
package notifytest

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/proofstreak/internal/notify"
)

// ErrUnreachable is returned for recipients listed in Recorder.Fail.
var ErrUnreachable = errors.New("recipient unreachable")

type Message struct {
	RecipientID int64
	Text        string
	PhotoToken  string
	Caption     string
	Buttons     []notify.Button
}

// Recorder keeps every delivered message. Sends to recipients in Fail
// return ErrUnreachable and are not recorded.
type Recorder struct {
	Fail map[int64]bool

	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) SendText(_ context.Context, recipientID int64, text string) error {
	return r.record(Message{RecipientID: recipientID, Text: text})
}

func (r *Recorder) SendPhoto(_ context.Context, recipientID int64, photoToken, caption string, buttons []notify.Button) error {
	return r.record(Message{RecipientID: recipientID, PhotoToken: photoToken, Caption: caption, Buttons: buttons})
}

func (r *Recorder) record(m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail[m.RecipientID] {
		return ErrUnreachable
	}
	r.messages = append(r.messages, m)
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// To returns the messages delivered to recipientID.
func (r *Recorder) To(recipientID int64) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.RecipientID == recipientID {
			out = append(out, m)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
