package main

import (
	"strings"
	"testing"
)

func TestRequireFlags(t *testing.T) {
	cases := []struct {
		name          string
		agent         string
		audioFilePath string
		wantErr       string
	}{
		{
			name:          "both present",
			agent:         "projects/p/locations/global/agents/a",
			audioFilePath: "query.raw",
		},
		{
			name:          "missing agent",
			audioFilePath: "query.raw",
			wantErr:       "--agent is required",
		},
		{
			name:    "missing audio file",
			agent:   "projects/p/locations/global/agents/a",
			wantErr: "--audio-file-path is required",
		},
		{
			name:    "missing both",
			wantErr: "--agent and --audio-file-path are required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := requireFlags(tc.agent, tc.audioFilePath)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected usage error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("got %q, want it to name %q", err, tc.wantErr)
			}
		})
	}
}
