package assist

import (
	"bytes"
	"testing"
)

func TestSessionNewConversationFlagClearsOnce(t *testing.T) {
	s := NewSession("en-GB", "dev-1", "model-1")
	if !s.IsNewConversation() {
		t.Fatalf("fresh session must flag a new conversation")
	}
	s.MarkTurnStarted()
	if s.IsNewConversation() {
		t.Fatalf("flag must clear after the first turn starts")
	}
	s.MarkTurnStarted()
	if s.IsNewConversation() {
		t.Fatalf("flag must stay cleared")
	}
}

func TestSessionStateLastWriteWins(t *testing.T) {
	s := NewSession("en-GB", "dev-1", "model-1")
	if s.State() != nil {
		t.Fatalf("fresh session must have no state token")
	}

	s.SetState([]byte("first"))
	s.SetState([]byte("second"))
	if !bytes.Equal(s.State(), []byte("second")) {
		t.Fatalf("got %q, want last written token", s.State())
	}

	s.SetState(nil)
	s.SetState([]byte{})
	if !bytes.Equal(s.State(), []byte("second")) {
		t.Fatalf("empty tokens must not replace the stored token, got %q", s.State())
	}
}
