// Package assistant binds the embedded-assistant gRPC API to the assist
// package's request/response types. All vendor schema knowledge lives here.
package assistant

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	embeddedpb "google.golang.org/genproto/googleapis/assistant/embedded/v1alpha2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	grpcoauth "google.golang.org/grpc/credentials/oauth"

	"github.com/askehill/covis2/pkg/assist"
	"github.com/askehill/covis2/pkg/errorsx"
	"github.com/askehill/covis2/pkg/logging"
)

// DefaultEndpoint is the production assistant service.
const DefaultEndpoint = "embeddedassistant.googleapis.com:443"

// DefaultDeadline bounds one turn's stream.
const DefaultDeadline = 185 * time.Second

// Client is an assist.Endpoint over an authenticated gRPC channel.
type Client struct {
	conn     *grpc.ClientConn
	service  embeddedpb.EmbeddedAssistantClient
	deadline time.Duration
	logger   *slog.Logger
}

// Config carries the channel parameters.
type Config struct {
	Endpoint string
	Deadline time.Duration
	Logger   *slog.Logger
}

// Dial opens the TLS channel with per-RPC OAuth credentials. The connection
// is lazy; authentication errors surface when the first turn opens.
func Dial(tokens oauth2.TokenSource, cfg Config) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	logger := logging.NewComponentLogger(cfg.Logger, "assistant_client")
	logger.Info("connecting", slog.String("endpoint", endpoint))

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})),
		grpc.WithPerRPCCredentials(grpcoauth.TokenSource{TokenSource: tokens}),
	)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAssistOpen)
	}

	return &Client{
		conn:     conn,
		service:  embeddedpb.NewEmbeddedAssistantClient(conn),
		deadline: deadline,
		logger:   logger,
	}, nil
}

// OpenTurn starts one Assist stream bounded by the per-turn deadline.
func (c *Client) OpenTurn(ctx context.Context) (assist.TurnStream, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	stream, err := c.service.Assist(ctx)
	if err != nil {
		cancel()
		return nil, errorsx.Wrap(err, errorsx.ReasonAssistOpen)
	}
	return &turnStream{stream: stream, cancel: cancel, logger: c.logger}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

type turnStream struct {
	stream embeddedpb.EmbeddedAssistant_AssistClient
	cancel context.CancelFunc
	logger *slog.Logger
}

func (t *turnStream) Send(req assist.Request) error {
	msg, err := toAssistRequest(req)
	if err != nil {
		return err
	}
	return t.stream.Send(msg)
}

func (t *turnStream) CloseSend() error {
	return t.stream.CloseSend()
}

// Recv maps the next vendor response onto the domain signal set. The stream
// context is released once the server side terminates.
func (t *turnStream) Recv() (*assist.Response, error) {
	msg, err := t.stream.Recv()
	if err != nil {
		t.cancel()
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return toResponse(msg), nil
}

func toAssistRequest(req assist.Request) (*embeddedpb.AssistRequest, error) {
	switch r := req.(type) {
	case assist.ConfigRequest:
		config := &embeddedpb.AssistConfig{
			Type: &embeddedpb.AssistConfig_AudioInConfig{
				AudioInConfig: &embeddedpb.AudioInConfig{
					Encoding:        embeddedpb.AudioInConfig_LINEAR16,
					SampleRateHertz: int32(r.SampleRate),
				},
			},
			AudioOutConfig: &embeddedpb.AudioOutConfig{
				Encoding:         embeddedpb.AudioOutConfig_LINEAR16,
				SampleRateHertz:  int32(r.SampleRate),
				VolumePercentage: int32(r.Volume),
			},
			DialogStateIn: &embeddedpb.DialogStateIn{
				LanguageCode:      r.Language,
				ConversationState: r.ConversationState,
				IsNewConversation: r.IsNewConversation,
			},
			DeviceConfig: &embeddedpb.DeviceConfig{
				DeviceId:      r.DeviceID,
				DeviceModelId: r.DeviceModelID,
			},
		}
		if r.ScreenMode == assist.ScreenModePlaying {
			config.ScreenOutConfig = &embeddedpb.ScreenOutConfig{
				ScreenMode: embeddedpb.ScreenOutConfig_PLAYING,
			}
		}
		return &embeddedpb.AssistRequest{
			Type: &embeddedpb.AssistRequest_Config{Config: config},
		}, nil
	case assist.AudioRequest:
		return &embeddedpb.AssistRequest{
			Type: &embeddedpb.AssistRequest_AudioIn{AudioIn: r.Data},
		}, nil
	default:
		return nil, fmt.Errorf("assistant: unknown request type %T", req)
	}
}

func toResponse(msg *embeddedpb.AssistResponse) *assist.Response {
	resp := &assist.Response{
		EndOfUtterance: msg.GetEventType() == embeddedpb.AssistResponse_END_OF_UTTERANCE,
		AudioOut:       msg.GetAudioOut().GetAudioData(),
		ScreenOut:      msg.GetScreenOut().GetData(),
	}
	for _, result := range msg.GetSpeechResults() {
		resp.Transcripts = append(resp.Transcripts, result.GetTranscript())
	}
	if action := msg.GetDeviceAction().GetDeviceRequestJson(); action != "" {
		resp.DeviceAction = []byte(action)
	}
	if state := msg.GetDialogStateOut(); state != nil {
		resp.ConversationState = state.GetConversationState()
		resp.VolumePercent = int(state.GetVolumePercentage())
		resp.SupplementalText = state.GetSupplementalDisplayText()
		switch state.GetMicrophoneMode() {
		case embeddedpb.DialogStateOut_DIALOG_FOLLOW_ON:
			resp.MicMode = assist.MicModeFollowOn
		case embeddedpb.DialogStateOut_CLOSE_MICROPHONE:
			resp.MicMode = assist.MicModeClose
		}
	}
	return resp
}

var _ assist.Endpoint = (*Client)(nil)
