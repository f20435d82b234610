// Package assist implements the conversation turn loop: one configuration
// request followed by microphone audio out, server signals back, and a
// continue/stop decision per turn.
package assist

// Request is one outbound message of a turn. Exactly one ConfigRequest is
// sent first; every later message is an AudioRequest.
type Request interface {
	isRequest()
}

// ConfigRequest carries the turn configuration and no audio.
type ConfigRequest struct {
	Language          string
	SampleRate        int
	Volume            int
	ConversationState []byte
	IsNewConversation bool
	DeviceID          string
	DeviceModelID     string
	// ScreenMode requests an active visual surface when display output is
	// enabled for the session; empty otherwise.
	ScreenMode ScreenMode
}

// AudioRequest carries one block of raw microphone audio.
type AudioRequest struct {
	Data []byte
}

func (ConfigRequest) isRequest() {}
func (AudioRequest) isRequest()  {}

// MicMode is the server's directive for the microphone after this turn.
type MicMode int

const (
	MicModeUnspecified MicMode = iota
	MicModeFollowOn
	MicModeClose
)

func (m MicMode) String() string {
	switch m {
	case MicModeFollowOn:
		return "FOLLOW_ON"
	case MicModeClose:
		return "CLOSE"
	default:
		return "UNSPECIFIED"
	}
}

// ScreenMode selects the visual surface state requested by the config message.
type ScreenMode string

const (
	ScreenModeOff     ScreenMode = ""
	ScreenModePlaying ScreenMode = "playing"
)

// Response is one inbound message of a turn. Any combination of its signals
// may be present; absent signals are the zero value and are applied as no-ops.
type Response struct {
	EndOfUtterance    bool
	Transcripts       []string
	AudioOut          []byte
	ConversationState []byte
	VolumePercent     int
	MicMode           MicMode
	// DeviceAction is an opaque JSON-encoded device command.
	DeviceAction []byte
	// ScreenOut is an opaque display payload.
	ScreenOut []byte
	// SupplementalText is display text accompanying the dialog state.
	SupplementalText string
}
