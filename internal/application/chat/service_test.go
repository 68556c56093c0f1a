package chat

import (
	"context"
	"errors"
	"testing"
)

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (f *fakeCompleter) Chat(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system = system
	f.user = user
	return f.reply, f.err
}

func TestAsk(t *testing.T) {
	t.Run("empty message is rejected without a call", func(t *testing.T) {
		client := &fakeCompleter{}
		svc := NewService(client, "system")
		if _, err := svc.Ask(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Ask() error = %v, want ErrEmptyMessage", err)
		}
		if client.calls != 0 {
			t.Errorf("calls = %d, want 0", client.calls)
		}
	})

	t.Run("system prompt and message are forwarded", func(t *testing.T) {
		client := &fakeCompleter{reply: "Oats are a whole grain."}
		svc := NewService(client, "you are a food assistant")
		got, err := svc.Ask(context.Background(), "what are oats?")
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		if client.system != "you are a food assistant" || client.user != "what are oats?" {
			t.Errorf("forwarded = (%q, %q)", client.system, client.user)
		}
		if got != "Oats are a whole grain." {
			t.Errorf("Ask() = %q", got)
		}
	})

	t.Run("collaborator errors propagate", func(t *testing.T) {
		wantErr := errors.New("quota")
		client := &fakeCompleter{err: wantErr}
		svc := NewService(client, "system")
		if _, err := svc.Ask(context.Background(), "hi"); !errors.Is(err, wantErr) {
			t.Errorf("Ask() error = %v, want %v", err, wantErr)
		}
	})

	t.Run("empty reply gets a fallback", func(t *testing.T) {
		client := &fakeCompleter{reply: ""}
		svc := NewService(client, "system")
		got, err := svc.Ask(context.Background(), "hi")
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		if got == "" {
			t.Error("expected fallback reply")
		}
	})
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**bold** text", "bold text"},
		{"some *italic* words", "some italic words"},
		{"__strong__ and _soft_", "strong and soft"},
		{"1. plain list item", "1. plain list item"},
		{"no markdown here", "no markdown here"},
	}
	for _, tt := range tests {
		if got := stripMarkdown(tt.in); got != tt.want {
			t.Errorf("stripMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
