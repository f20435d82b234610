package dialogflow

import (
	"testing"

	"cloud.google.com/go/dialogflow/cx/apiv3beta1/cxpb"

	"github.com/askehill/covis2/pkg/errorsx"
)

func TestParseAgent(t *testing.T) {
	path, err := ParseAgent("projects/covis2/locations/europe-west2/agents/triage")
	if err != nil {
		t.Fatalf("parse agent: %v", err)
	}
	if path.Project != "covis2" || path.Location != "europe-west2" || path.Agent != "triage" {
		t.Fatalf("unexpected parse: %+v", path)
	}
}

func TestParseAgentRejectsMalformedNames(t *testing.T) {
	cases := []string{
		"",
		"projects/covis2",
		"projects/covis2/locations/global",
		"projects//locations/global/agents/a",
		"organizations/x/locations/global/agents/a",
		"projects/covis2/locations/global/agents/a/sessions/s",
	}
	for _, agent := range cases {
		_, err := ParseAgent(agent)
		if err == nil {
			t.Fatalf("expected error for %q", agent)
		}
		if !errorsx.HasReason(err, errorsx.ReasonIntentParseAgent) {
			t.Fatalf("expected intent_parse_agent reason for %q, got %s", agent, errorsx.Reason(err))
		}
	}
}

func TestEndpointDerivation(t *testing.T) {
	if got := Endpoint("global"); got != "" {
		t.Fatalf("global location must use the default endpoint, got %q", got)
	}
	if got := Endpoint("europe-west2"); got != "europe-west2-dialogflow.googleapis.com:443" {
		t.Fatalf("unexpected regional endpoint %q", got)
	}
}

func TestResponseMessagesJoinFragments(t *testing.T) {
	messages := []*cxpb.ResponseMessage{
		{
			Message: &cxpb.ResponseMessage_Text_{
				Text: &cxpb.ResponseMessage_Text{Text: []string{"You", "should", "rest."}},
			},
		},
		{
			// Non-text messages are skipped.
			Message: &cxpb.ResponseMessage_Payload{},
		},
		{
			Message: &cxpb.ResponseMessage_Text_{
				Text: &cxpb.ResponseMessage_Text{Text: []string{"Stay home."}},
			},
		},
	}

	out := responseMessages(messages)
	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(out))
	}
	if out[0] != "You should rest." {
		t.Fatalf("fragments not joined by spaces: %q", out[0])
	}
	if out[1] != "Stay home." {
		t.Fatalf("unexpected second message %q", out[1])
	}
}
