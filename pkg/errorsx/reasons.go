package errorsx

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonConfigLoad         ReasonCode = "config_load"
	ReasonDeviceConfig       ReasonCode = "device_config"
	ReasonCredentialsLoad    ReasonCode = "credentials_load"
	ReasonCredentialsRefresh ReasonCode = "credentials_refresh"

	ReasonAudioDevice ReasonCode = "audio_device"

	ReasonAssistOpen ReasonCode = "assist_open"
	ReasonAssistSend ReasonCode = "assist_send"
	ReasonAssistRecv ReasonCode = "assist_recv"

	ReasonDeviceActionParse ReasonCode = "device_action_parse"
	ReasonDisplayRender     ReasonCode = "display_render"

	ReasonIntentParseAgent ReasonCode = "intent_parse_agent"
	ReasonIntentAudioFile  ReasonCode = "intent_audio_file"
	ReasonIntentDetect     ReasonCode = "intent_detect"
)

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

// Fatal reports whether the reason belongs to the startup phase, where the
// process exits instead of surfacing the error to a conversation turn.
func Fatal(reason ReasonCode) bool {
	switch reason {
	case ReasonConfigLoad, ReasonDeviceConfig, ReasonCredentialsLoad, ReasonCredentialsRefresh, ReasonAudioDevice:
		return true
	}
	return false
}
