package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/chat"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/transcript"
)

// View renders the transcript and status lines to a terminal.
// It is not safe for concurrent use; the event loop owns it.
type View struct {
	out        io.Writer
	color      bool
	transcript *transcript.Transcript

	dark         bool
	recording    bool
	useResume    bool
	draft        string
	awaitingKey  bool
	apiStatus    string
	uploadStatus string
}

// NewView creates a view writing to out
func NewView(out io.Writer, tr *transcript.Transcript, dark, color bool) *View {
	if tr == nil {
		tr = transcript.New()
	}
	return &View{out: out, color: color, transcript: tr, dark: dark}
}

// Restore sets theme and mode from persisted state without printing
func (v *View) Restore(dark, useResume bool) {
	v.dark = dark
	v.useResume = useResume
}

// Transcript returns the message model behind the view
func (v *View) Transcript() *transcript.Transcript { return v.transcript }

// Draft returns the text waiting in the input, typically a voice transcript
func (v *View) Draft() string { return v.draft }

// TakeDraft returns and clears the draft
func (v *View) TakeDraft() string {
	d := v.draft
	v.draft = ""
	return d
}

// AwaitingKey reports whether the next line is read as the API key
func (v *View) AwaitingKey() bool { return v.awaitingKey }

// PromptForKey moves focus to the API key input
func (v *View) PromptForKey() {
	v.awaitingKey = true
	v.printf("%sEnter your HuggingFace API key:%s\n", v.palette().Accent, v.palette().Reset)
}

// CancelKeyPrompt returns focus to the message input
func (v *View) CancelKeyPrompt() { v.awaitingKey = false }

// Recording reports whether the recording indicator is on
func (v *View) Recording() bool { return v.recording }

// DarkTheme reports the active theme
func (v *View) DarkTheme() bool { return v.dark }

// UseResume reports the displayed interview mode
func (v *View) UseResume() bool { return v.useResume }

// APIStatus returns the API key status line
func (v *View) APIStatus() string { return v.apiStatus }

// UploadStatus returns the resume status line
func (v *View) UploadStatus() string { return v.uploadStatus }

// Apply renders one instruction
func (v *View) Apply(inst chat.Instruction) {
	p := v.palette()

	switch in := inst.(type) {
	case chat.AppendMessage:
		msg := v.transcript.AddMessage(in.Text, in.Sender)
		v.renderMessage(msg)
	case chat.SetInput:
		v.draft = in.Text
		v.printf("%sDraft:%s %s\n%s(press Enter to send, or type a new message)%s\n", p.Accent, p.Reset, in.Text, p.Muted, p.Reset)
	case chat.FocusAPIKey:
		v.PromptForKey()
	case chat.SetAPIStatus:
		v.apiStatus = in.Text
		v.status("API key", in.Text)
	case chat.ClearAPIKeyInput:
		v.awaitingKey = false
	case chat.SetUploadStatus:
		v.uploadStatus = in.Text
		v.status("Resume", in.Text)
	case chat.ResetTranscript:
		v.transcript.Clear()
		v.draft = ""
		v.RenderWelcome()
	case chat.SetRecording:
		v.recording = in.Active
		if in.Active {
			v.printf("%s● Recording...%s %s(/mic to stop)%s\n", p.Status, p.Reset, p.Muted, p.Reset)
		} else {
			v.printf("%s■ Recording stopped, transcribing...%s\n", p.Muted, p.Reset)
		}
	case chat.SetTheme:
		v.dark = in.Dark
		p = v.palette()
		v.printf("%s%s Theme: %s%s\n", p.Accent, ThemeGlyph(v.dark), themeName(v.dark), p.Reset)
	case chat.SetMode:
		v.useResume = in.UseResume
		v.status("Mode", modeName(in.UseResume))
	}
}

// RenderWelcome prints the header and, while no message exists, the welcome placeholder
func (v *View) RenderWelcome() {
	p := v.palette()
	v.printf("%s%s InterviewIQ%s %s· %s%s\n", p.Accent, ThemeGlyph(v.dark), p.Reset, p.Muted, modeName(v.useResume), p.Reset)

	if !v.transcript.WelcomeVisible() {
		return
	}
	w := transcript.DefaultWelcome
	v.printf("\n👋 %s%s%s\n%s\n", p.Accent, w.Title, p.Reset, w.Body)
	for _, tip := range w.Tips {
		v.printf("  %s\n", tip)
	}
	v.printf("%sType /help for commands.%s\n\n", p.Muted, p.Reset)
}

// Notice prints a local message that is not part of the transcript
func (v *View) Notice(text string) {
	p := v.palette()
	v.printf("%s%s%s\n", p.Muted, text, p.Reset)
}

// Error prints a local input error
func (v *View) Error(err error) {
	p := v.palette()
	v.printf("%s%v%s\n", p.Status, err, p.Reset)
}

func (v *View) renderMessage(msg transcript.Message) {
	p := v.palette()
	color := p.User
	if msg.Sender == transcript.SenderBot {
		color = p.Bot
	}

	v.printf("%s%s%s  %s%s%s\n", color, msg.Sender.Label(), p.Reset, p.Muted, msg.Stamp(), p.Reset)
	for _, line := range strings.Split(msg.Text, "\n") {
		v.printf("  %s\n", line)
	}
}

func (v *View) status(label, text string) {
	p := v.palette()
	v.printf("%s[%s]%s %s\n", p.Status, label, p.Reset, text)
}

func (v *View) palette() Palette {
	return PaletteFor(v.dark, v.color)
}

func (v *View) printf(format string, args ...any) {
	fmt.Fprintf(v.out, format, args...)
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func modeName(useResume bool) string {
	if useResume {
		return "resume-based interview"
	}
	return "general interview"
}
