package actions

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Action
		wantErr bool
	}{
		{"approve", "approve:abc123", Action{Approve, "abc123"}, false},
		{"reject", "reject:abc123", Action{Reject, "abc123"}, false},
		{"submit", "submit:h-1", Action{Submit, "h-1"}, false},
		{"id with colon kept whole", "submit:a:b", Action{Submit, "a:b"}, false},
		{"no separator", "approve", Action{}, true},
		{"unknown verb", "delete:abc", Action{}, true},
		{"empty id", "approve:", Action{}, true},
		{"empty", "", Action{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.payload, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("Parse(%q) error should wrap ErrInvalidPayload", tt.payload)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	a := New(Approve, "sub-42")
	if a.String() != "approve:sub-42" {
		t.Fatalf("String() = %q", a.String())
	}
	parsed, err := Parse(a.String())
	if err != nil || parsed != a {
		t.Errorf("Parse(String()) = %+v, %v", parsed, err)
	}
}
