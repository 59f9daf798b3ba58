package chat

import "sync"

// Session is the client-side state shared by all intents of one user
type Session struct {
	id        string
	useResume bool
	darkTheme bool

	mu sync.RWMutex
}

// NewSession creates session state. The theme defaults to dark.
func NewSession(id string, useResume bool) *Session {
	return &Session{id: id, useResume: useResume, darkTheme: true}
}

// ID returns the backend conversation id
func (s *Session) ID() string {
	return s.id
}

// UseResume reports whether the interview is grounded on the resume
func (s *Session) UseResume() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useResume
}

// SetUseResume selects the interview mode
func (s *Session) SetUseResume(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useResume = v
}

// DarkTheme reports the current theme
func (s *Session) DarkTheme() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkTheme
}

// SetDarkTheme sets the theme, used when restoring the stored preference
func (s *Session) SetDarkTheme(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkTheme = dark
}

// ToggleTheme flips the theme and returns the new value
func (s *Session) ToggleTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkTheme = !s.darkTheme
	return s.darkTheme
}
