package ui

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/chat"
)

// Handler processes intents, emitting render instructions
type Handler interface {
	Handle(ctx context.Context, intent chat.Intent, emit chat.Emitter)
}

// event is what background goroutines send back to the loop
type event struct {
	inst chat.Instruction
	// intent is dispatched by the loop, used by timed recordings
	intent chat.Intent
	// done marks the end of one background task
	done bool
	// gen ties a timed intent to the recording that armed it
	gen uint64
}

// App is the terminal event loop. Only the goroutine running Run touches the view;
// every intent runs on its own goroutine and reports back over a channel.
type App struct {
	view    *View
	handler Handler
	logger  *slog.Logger
	events  chan event

	inflight int

	// Pending automatic stop of a timed recording
	timerGen    uint64
	cancelTimer func()
}

// NewApp creates the event loop
func NewApp(view *View, handler Handler, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		view:    view,
		handler: handler,
		logger:  logger.With(slog.String("component", "ui")),
		events:  make(chan event, 64),
	}
}

// Run reads commands from in until /quit, end of input, or ctx cancellation.
// At end of input it waits for in-flight intents and applies their output.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go readLines(ctx, in, lines)

	a.view.RenderWelcome()

	eof := false
	for {
		if eof && a.inflight == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				eof = true
				lines = nil
				continue
			}
			if a.handleLine(ctx, line) {
				a.logger.Info("Quit requested")
				return nil
			}
		case ev := <-a.events:
			if ev.inst != nil {
				a.view.Apply(ev.inst)
				if rec, ok := ev.inst.(chat.SetRecording); ok && !rec.Active {
					a.disarm()
				}
			}
			if ev.done {
				a.inflight--
			}
			if ev.intent != nil {
				if ev.gen != a.timerGen {
					a.logger.Debug("Dropping stale timed intent", slog.String("intent", chat.IntentName(ev.intent)))
					continue
				}
				a.cancelTimer = nil
				a.dispatch(ctx, ev.intent)
			}
		}
	}
}

func (a *App) handleLine(ctx context.Context, line string) bool {
	if a.view.AwaitingKey() {
		a.view.CancelKeyPrompt()
		if !strings.HasPrefix(strings.TrimSpace(line), "/") {
			a.dispatch(ctx, chat.SaveAPIKey{Key: line})
			return false
		}
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		a.view.Error(err)
		return false
	}

	switch cmd.Kind {
	case CommandBlank:
		a.dispatch(ctx, chat.SendMessage{Text: a.view.TakeDraft()})
	case CommandText:
		a.view.TakeDraft()
		a.dispatch(ctx, chat.SendMessage{Text: cmd.Text})
	case CommandKeyPrompt:
		a.view.PromptForKey()
	case CommandHelp:
		a.view.Notice(HelpText)
	case CommandQuit:
		return true
	case CommandIntent:
		starting := !a.view.Recording()
		switch cmd.Intent.(type) {
		case chat.StopRecording:
			a.disarm()
		case chat.ToggleRecording:
			if !starting {
				a.disarm()
			}
		}
		a.dispatch(ctx, cmd.Intent)
		if cmd.StopAfter > 0 && starting {
			a.view.Notice("Recording stops automatically after " + cmd.StopAfter.String())
			a.schedule(ctx, cmd.StopAfter, chat.StopRecording{})
		}
	}
	return false
}

// dispatch runs the intent on its own goroutine
func (a *App) dispatch(ctx context.Context, intent chat.Intent) {
	a.inflight++
	a.logger.Debug("Dispatching intent", slog.String("intent", chat.IntentName(intent)))

	go func() {
		a.handler.Handle(ctx, intent, func(inst chat.Instruction) {
			a.send(ctx, event{inst: inst})
		})
		a.send(ctx, event{done: true})
	}()
}

// schedule dispatches intent after d unless the loop exits or disarm is called
// first. Only one timer is pending at a time.
func (a *App) schedule(ctx context.Context, d time.Duration, intent chat.Intent) {
	a.disarm()
	a.inflight++

	gen := a.timerGen
	stop := make(chan struct{})
	a.cancelTimer = func() { close(stop) }

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
			a.send(ctx, event{intent: intent, done: true, gen: gen})
		case <-stop:
			a.send(ctx, event{done: true})
		case <-ctx.Done():
		}
	}()
}

// disarm cancels the pending timer. A timed intent already queued is dropped
// by the loop because its generation no longer matches.
func (a *App) disarm() {
	a.timerGen++
	if a.cancelTimer != nil {
		a.cancelTimer()
		a.cancelTimer = nil
	}
}

func (a *App) send(ctx context.Context, ev event) {
	select {
	case a.events <- ev:
	case <-ctx.Done():
	}
}

func readLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}
