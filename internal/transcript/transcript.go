// Package transcript holds the ordered chat transcript shown to the user.
package transcript

import (
	"sync"
	"time"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Label returns the display name for the sender
func (s Sender) Label() string {
	if s == SenderBot {
		return "InterviewIQ"
	}
	return "You"
}

// Message is a rendered transcript entry
type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Stamp formats the message time the way the transcript header shows it
func (m Message) Stamp() string {
	return m.Timestamp.Format("15:04")
}

// Welcome is the placeholder shown until the first message arrives
type Welcome struct {
	Title string
	Body  string
	Tips  []string
}

// DefaultWelcome is shown on startup and after the chat is cleared
var DefaultWelcome = Welcome{
	Title: "Welcome to InterviewIQ!",
	Body:  "I'm your AI interview coach, ready to help you ace your next interview. Let's practice together!",
	Tips: []string{
		"💬 Type or use voice",
		"📝 Upload your resume",
		"🎯 Get personalized questions",
	},
}

// Transcript is the ordered list of messages
type Transcript struct {
	messages    []Message
	welcomeOpen bool
	now         func() time.Time

	mu sync.RWMutex
}

// New creates an empty transcript showing the welcome placeholder
func New() *Transcript {
	return &Transcript{
		welcomeOpen: true,
		now:         time.Now,
	}
}

// AddMessage appends a message and hides the welcome placeholder
func (t *Transcript) AddMessage(text string, sender Sender) Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg := Message{Text: text, Sender: sender, Timestamp: t.now()}
	t.messages = append(t.messages, msg)
	t.welcomeOpen = false

	return msg
}

// Clear removes all messages and restores the welcome placeholder
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = nil
	t.welcomeOpen = true
}

// Messages returns a copy of the transcript in order
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// WelcomeVisible reports whether the welcome placeholder is shown
func (t *Transcript) WelcomeVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.welcomeOpen
}
