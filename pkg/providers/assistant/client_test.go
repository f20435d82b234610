package assistant

import (
	"testing"

	embeddedpb "google.golang.org/genproto/googleapis/assistant/embedded/v1alpha2"

	"github.com/askehill/covis2/pkg/assist"
)

func TestConfigRequestMapping(t *testing.T) {
	msg, err := toAssistRequest(assist.ConfigRequest{
		Language:          "en-GB",
		SampleRate:        16000,
		Volume:            70,
		ConversationState: []byte("tok"),
		IsNewConversation: true,
		DeviceID:          "dev-1",
		DeviceModelID:     "model-1",
	})
	if err != nil {
		t.Fatalf("map config: %v", err)
	}

	config := msg.GetConfig()
	if config == nil {
		t.Fatalf("expected config oneof to be set")
	}
	if config.GetAudioInConfig().GetSampleRateHertz() != 16000 {
		t.Fatalf("unexpected input sample rate")
	}
	if config.GetAudioOutConfig().GetVolumePercentage() != 70 {
		t.Fatalf("unexpected volume")
	}
	if !config.GetDialogStateIn().GetIsNewConversation() {
		t.Fatalf("new-conversation flag lost")
	}
	if config.GetScreenOutConfig() != nil {
		t.Fatalf("screen config must be absent unless display is enabled")
	}
}

func TestConfigRequestScreenMode(t *testing.T) {
	msg, err := toAssistRequest(assist.ConfigRequest{ScreenMode: assist.ScreenModePlaying})
	if err != nil {
		t.Fatalf("map config: %v", err)
	}
	if msg.GetConfig().GetScreenOutConfig().GetScreenMode() != embeddedpb.ScreenOutConfig_PLAYING {
		t.Fatalf("expected PLAYING screen mode")
	}
}

func TestAudioRequestMapping(t *testing.T) {
	msg, err := toAssistRequest(assist.AudioRequest{Data: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("map audio: %v", err)
	}
	if len(msg.GetAudioIn()) != 3 {
		t.Fatalf("audio payload lost")
	}
	if msg.GetConfig() != nil {
		t.Fatalf("audio requests must not carry config")
	}
}

func TestResponseMapping(t *testing.T) {
	resp := toResponse(&embeddedpb.AssistResponse{
		EventType: embeddedpb.AssistResponse_END_OF_UTTERANCE,
		SpeechResults: []*embeddedpb.SpeechRecognitionResult{
			{Transcript: "what"}, {Transcript: "time"},
		},
		AudioOut: &embeddedpb.AudioOut{AudioData: []byte("PCM")},
		DialogStateOut: &embeddedpb.DialogStateOut{
			ConversationState: []byte("tok"),
			MicrophoneMode:    embeddedpb.DialogStateOut_DIALOG_FOLLOW_ON,
			VolumePercentage:  55,
		},
		DeviceAction: &embeddedpb.DeviceAction{DeviceRequestJson: `{"inputs":[]}`},
	})

	if !resp.EndOfUtterance {
		t.Fatalf("end of utterance lost")
	}
	if len(resp.Transcripts) != 2 || resp.Transcripts[1] != "time" {
		t.Fatalf("transcripts lost: %v", resp.Transcripts)
	}
	if string(resp.AudioOut) != "PCM" {
		t.Fatalf("audio out lost")
	}
	if string(resp.ConversationState) != "tok" || resp.VolumePercent != 55 {
		t.Fatalf("dialog state lost")
	}
	if resp.MicMode != assist.MicModeFollowOn {
		t.Fatalf("expected FOLLOW_ON, got %s", resp.MicMode)
	}
	if len(resp.DeviceAction) == 0 {
		t.Fatalf("device action lost")
	}
}

func TestResponseDefaults(t *testing.T) {
	resp := toResponse(&embeddedpb.AssistResponse{})
	if resp.EndOfUtterance || resp.MicMode != assist.MicModeUnspecified {
		t.Fatalf("empty response must map to no-op signals")
	}
	if resp.DeviceAction != nil {
		t.Fatalf("empty device action must stay nil")
	}
}
