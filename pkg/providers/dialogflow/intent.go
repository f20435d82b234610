// Package dialogflow performs one-shot intent detection from a recorded
// audio file against a Dialogflow CX agent.
package dialogflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	cx "cloud.google.com/go/dialogflow/cx/apiv3beta1"
	"cloud.google.com/go/dialogflow/cx/apiv3beta1/cxpb"
	"google.golang.org/api/option"

	"github.com/askehill/covis2/pkg/errorsx"
	"github.com/askehill/covis2/pkg/logging"
)

// SampleRateHertz matches the recording rate of the submitted audio files.
const SampleRateHertz = 44100

// Params describes one detect-intent request.
type Params struct {
	// Agent is the full agent resource name,
	// projects/<project>/locations/<location>/agents/<agent>.
	Agent         string
	SessionID     string
	LanguageCode  string
	AudioFilePath string
}

// Result carries the parts of the response the CLI prints.
type Result struct {
	SessionPath string
	Transcript  string
	// Messages are the agent's response messages, each with its text
	// fragments joined by single spaces.
	Messages []string
}

// AgentPath is a parsed agent resource name.
type AgentPath struct {
	Project  string
	Location string
	Agent    string
}

// ParseAgent splits an agent resource name into its components.
func ParseAgent(agent string) (AgentPath, error) {
	parts := strings.Split(agent, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "locations" || parts[4] != "agents" ||
		parts[1] == "" || parts[3] == "" || parts[5] == "" {
		return AgentPath{}, errorsx.Wrap(
			fmt.Errorf("invalid agent resource name %q", agent),
			errorsx.ReasonIntentParseAgent)
	}
	return AgentPath{Project: parts[1], Location: parts[3], Agent: parts[5]}, nil
}

// Endpoint returns the regional API endpoint for a location, or "" when the
// default (global) endpoint applies.
func Endpoint(location string) string {
	if location == "" || location == "global" {
		return ""
	}
	return location + "-dialogflow.googleapis.com:443"
}

// DetectIntent sends the whole audio file as one LINEAR16 request and
// returns the transcript and response messages.
func DetectIntent(ctx context.Context, params Params, logger *slog.Logger) (*Result, error) {
	log := logging.NewComponentLogger(logger, "dialogflow")

	path, err := ParseAgent(params.Agent)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if endpoint := Endpoint(path.Location); endpoint != "" {
		log.Info("using regional endpoint", slog.String("endpoint", endpoint))
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	audio, err := os.ReadFile(params.AudioFilePath)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonIntentAudioFile)
	}

	client, err := cx.NewSessionsClient(ctx, opts...)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonIntentDetect)
	}
	defer client.Close()

	sessionPath := fmt.Sprintf("%s/sessions/%s", params.Agent, params.SessionID)
	req := &cxpb.DetectIntentRequest{
		Session: sessionPath,
		QueryInput: &cxpb.QueryInput{
			Input: &cxpb.QueryInput_Audio{
				Audio: &cxpb.AudioInput{
					Config: &cxpb.InputAudioConfig{
						AudioEncoding:   cxpb.AudioEncoding_AUDIO_ENCODING_LINEAR_16,
						SampleRateHertz: SampleRateHertz,
					},
					Audio: audio,
				},
			},
			LanguageCode: params.LanguageCode,
		},
	}

	resp, err := client.DetectIntent(ctx, req)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonIntentDetect)
	}

	return &Result{
		SessionPath: sessionPath,
		Transcript:  resp.GetQueryResult().GetTranscript(),
		Messages:    responseMessages(resp.GetQueryResult().GetResponseMessages()),
	}, nil
}

func responseMessages(messages []*cxpb.ResponseMessage) []string {
	var out []string
	for _, msg := range messages {
		if text := msg.GetText(); text != nil {
			out = append(out, strings.Join(text.GetText(), " "))
		}
	}
	return out
}
