package notify

import "testing"

func TestMessageForNumericChatID(t *testing.T) {
	msg, err := messageFor("123456", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ChatID != 123456 {
		t.Fatalf("chat id mismatch: %d", msg.ChatID)
	}
	if msg.Text != "hello" {
		t.Fatalf("text mismatch: %q", msg.Text)
	}
}

func TestMessageForChannelName(t *testing.T) {
	msg, err := messageFor("@announcements", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ChannelUsername != "@announcements" {
		t.Fatalf("channel mismatch: %q", msg.ChannelUsername)
	}
}

func TestMessageForInvalidChatID(t *testing.T) {
	if _, err := messageFor("not-a-chat", "hello"); err == nil {
		t.Fatalf("expected error for invalid chat id")
	}
}
