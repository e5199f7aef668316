package entity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestMembersKeyOrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	if MembersKey([]uuid.UUID{a, b}) != MembersKey([]uuid.UUID{b, a}) {
		t.Error("expected identical key regardless of participant order")
	}
}

func TestMembersKeyCollapsesDuplicates(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	key := MembersKey([]uuid.UUID{a, b, a, b})
	if key != MembersKey([]uuid.UUID{a, b}) {
		t.Error("expected duplicates to collapse to the same key")
	}
	if got := len(strings.Split(key, ":")); got != 2 {
		t.Errorf("expected 2 key segments, got %d", got)
	}
}

func TestMembersKeySorted(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	parts := strings.Split(MembersKey([]uuid.UUID{c, a, b}), ":")
	for i := 1; i < len(parts); i++ {
		if parts[i-1] > parts[i] {
			t.Errorf("key segments not sorted: %q before %q", parts[i-1], parts[i])
		}
	}
}

func TestDistinctParticipantsKeepsFirstSeenOrder(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	distinct := DistinctParticipants([]uuid.UUID{b, a, b})
	if len(distinct) != 2 || distinct[0] != b || distinct[1] != a {
		t.Errorf("unexpected distinct result: %v", distinct)
	}
}

func TestMessageHasContent(t *testing.T) {
	empty := ""
	hello := "hello"

	tests := []struct {
		name    string
		message Message
		want    bool
	}{
		{name: "text only", message: Message{Text: &hello}, want: true},
		{name: "attachment only", message: Message{Attachments: []*Attachment{{FileId: uuid.New()}}}, want: true},
		{name: "both", message: Message{Text: &hello, Attachments: []*Attachment{{FileId: uuid.New()}}}, want: true},
		{name: "nil text no attachments", message: Message{}, want: false},
		{name: "empty text no attachments", message: Message{Text: &empty}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.message.HasContent(); got != tt.want {
				t.Errorf("HasContent() = %v, want %v", got, tt.want)
			}
		})
	}
}
