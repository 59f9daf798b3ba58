package transcript

import (
	"testing"
	"time"
)

func TestAddMessageHidesWelcome(t *testing.T) {
	tr := New()
	if !tr.WelcomeVisible() {
		t.Fatal("Expected welcome placeholder on a new transcript")
	}

	tr.AddMessage("hello", SenderUser)
	if tr.WelcomeVisible() {
		t.Error("Expected welcome placeholder to be hidden after the first message")
	}

	tr.AddMessage("hi there", SenderBot)
	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != SenderUser || msgs[1].Sender != SenderBot {
		t.Errorf("Unexpected message order: %+v", msgs)
	}
}

func TestClearRestoresWelcome(t *testing.T) {
	tr := New()
	tr.AddMessage("hello", SenderUser)
	tr.Clear()

	if tr.Len() != 0 {
		t.Errorf("Expected empty transcript, got %d messages", tr.Len())
	}
	if !tr.WelcomeVisible() {
		t.Error("Expected welcome placeholder after clear")
	}
}

func TestMessageStamp(t *testing.T) {
	tr := New()
	tr.now = func() time.Time { return time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC) }

	msg := tr.AddMessage("hello", SenderBot)
	if msg.Stamp() != "09:05" {
		t.Errorf("Expected 09:05, got %s", msg.Stamp())
	}
	if msg.Sender.Label() != "InterviewIQ" || SenderUser.Label() != "You" {
		t.Error("Unexpected sender labels")
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	tr := New()
	tr.AddMessage("hello", SenderUser)

	msgs := tr.Messages()
	msgs[0].Text = "changed"

	if tr.Messages()[0].Text != "hello" {
		t.Error("Messages must not expose internal storage")
	}
}
