package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/chat"
)

// CommandKind classifies a typed line
type CommandKind int

const (
	// CommandBlank is an empty line; it sends the current draft
	CommandBlank CommandKind = iota
	// CommandText is a plain message
	CommandText
	// CommandIntent carries an intent for the orchestrator
	CommandIntent
	// CommandKeyPrompt asks for the API key on the next line
	CommandKeyPrompt
	CommandHelp
	CommandQuit
)

// Command is a parsed input line
type Command struct {
	Kind   CommandKind
	Text   string
	Intent chat.Intent
	// StopAfter schedules an automatic stop for a timed recording
	StopAfter time.Duration
}

// HelpText lists the terminal commands
const HelpText = `Commands:
  <text>                 send a message
  <enter>                send the transcribed draft
  /mic [seconds]         start or stop recording, optionally stopping after N seconds
  /stop                  stop an active recording
  /key [token]           save your HuggingFace API key
  /upload <file.pdf>     upload your resume
  /mode with-resume      ask questions based on your resume
  /mode without-resume   ask general questions
  /clear                 clear the conversation
  /new                   start a new conversation
  /theme                 toggle dark and light theme
  /help                  show this help
  /quit                  exit`

// maxRecordingSeconds bounds /mic durations
const maxRecordingSeconds = 600

// ParseCommand turns one typed line into a Command
func ParseCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{Kind: CommandBlank}, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: CommandText, Text: trimmed}, nil
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/mic", "/record":
		cmd := Command{Kind: CommandIntent, Intent: chat.ToggleRecording{}}
		if arg == "" {
			return cmd, nil
		}
		secs, err := strconv.ParseFloat(arg, 64)
		if err != nil || secs <= 0 || secs > maxRecordingSeconds {
			return Command{}, fmt.Errorf("invalid recording duration %q: expected seconds between 0 and %d", arg, maxRecordingSeconds)
		}
		cmd.StopAfter = time.Duration(secs * float64(time.Second))
		return cmd, nil
	case "/stop":
		return Command{Kind: CommandIntent, Intent: chat.StopRecording{}}, nil
	case "/key":
		if arg == "" {
			return Command{Kind: CommandKeyPrompt}, nil
		}
		return Command{Kind: CommandIntent, Intent: chat.SaveAPIKey{Key: arg}}, nil
	case "/upload":
		return Command{Kind: CommandIntent, Intent: chat.UploadResume{Path: arg}}, nil
	case "/mode":
		switch strings.ToLower(arg) {
		case "with-resume", "resume":
			return Command{Kind: CommandIntent, Intent: chat.SetInterviewMode{UseResume: true}}, nil
		case "without-resume", "general":
			return Command{Kind: CommandIntent, Intent: chat.SetInterviewMode{UseResume: false}}, nil
		default:
			return Command{}, fmt.Errorf("unknown interview mode %q: use with-resume or without-resume", arg)
		}
	case "/clear":
		return Command{Kind: CommandIntent, Intent: chat.ClearChat{}}, nil
	case "/new":
		return Command{Kind: CommandIntent, Intent: chat.NewChat{}}, nil
	case "/theme":
		return Command{Kind: CommandIntent, Intent: chat.ToggleTheme{}}, nil
	case "/help", "/?":
		return Command{Kind: CommandHelp}, nil
	case "/quit", "/exit":
		return Command{Kind: CommandQuit}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %s, type /help for the list", name)
	}
}
