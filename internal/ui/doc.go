// Package ui is the terminal front end of the InterviewIQ client.
//
// Typed lines are parsed into commands; commands become chat intents that run
// concurrently, and the render instructions they produce are applied to the
// View by a single event loop:
//
//	stdin → ParseCommand → App.dispatch → chat.Orchestrator
//	                                          │
//	View.Apply ← App.Run loop ← events ───────┘
//
// An empty line sends the draft left in the input by a voice recording. After
// the backend asks for an API key, the next non-command line is saved as the key.
package ui
