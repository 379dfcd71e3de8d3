// Package actions encodes the "<verb>:<id>" payloads carried by chat buttons.
package actions

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload wraps every Parse failure.
var ErrInvalidPayload = errors.New("invalid action payload")

type Verb string

const (
	Approve Verb = "approve"
	Reject  Verb = "reject"
	Submit  Verb = "submit"
)

func (v Verb) Valid() bool {
	switch v {
	case Approve, Reject, Submit:
		return true
	}
	return false
}

// Action is a decoded button payload. ID is a submission id for approve and
// reject, and a habit id for submit.
type Action struct {
	Verb Verb
	ID   string
}

func New(verb Verb, id string) Action {
	return Action{Verb: verb, ID: id}
}

// String renders the wire form understood by the front end.
func (a Action) String() string {
	return string(a.Verb) + ":" + a.ID
}

func Parse(payload string) (Action, error) {
	verb, id, ok := strings.Cut(payload, ":")
	if !ok {
		return Action{}, fmt.Errorf("%w: malformed %q", ErrInvalidPayload, payload)
	}
	a := Action{Verb: Verb(verb), ID: id}
	if !a.Verb.Valid() {
		return Action{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPayload, verb)
	}
	if strings.TrimSpace(id) == "" {
		return Action{}, fmt.Errorf("%w: action %q is missing an id", ErrInvalidPayload, verb)
	}
	return a, nil
}
