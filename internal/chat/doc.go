// Package chat orchestrates user intents for the InterviewIQ client.
// Each intent maps to at most one backend call; the parsed reply is turned into
// an ordered list of render instructions for the view to apply.
package chat
