package assist

// Session is the conversation-level state carried across turns: the opaque
// server-issued state token and whether the next turn opens a new
// conversation. It is mutated only by the single active turn.
type Session struct {
	Language      string
	DeviceID      string
	DeviceModelID string

	state []byte
	isNew bool
}

// NewSession starts a fresh conversation: no state token, and the first turn
// flagged as a new conversation.
func NewSession(language, deviceID, deviceModelID string) *Session {
	return &Session{
		Language:      language,
		DeviceID:      deviceID,
		DeviceModelID: deviceModelID,
		isNew:         true,
	}
}

// State returns the most recently received conversation-state token, nil
// before the first one arrives.
func (s *Session) State() []byte { return s.state }

// SetState replaces the stored token. Empty tokens are ignored; tokens never
// merge, the last non-empty write wins.
func (s *Session) SetState(token []byte) {
	if len(token) == 0 {
		return
	}
	s.state = token
}

// IsNewConversation reports whether the next turn is the first of the session.
func (s *Session) IsNewConversation() bool { return s.isNew }

// MarkTurnStarted clears the new-conversation flag. It is called immediately
// after the configuration request for a turn has been built, so the flag is
// true at most once per session.
func (s *Session) MarkTurnStarted() {
	s.isNew = false
}
