package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/askehill/covis2/pkg/logging"
	"github.com/askehill/covis2/pkg/providers/dialogflow"
)

func main() {
	agent := flag.String("agent", "", "agent resource name (required)")
	sessionID := flag.String("session-id", uuid.NewString(),
		"identifier of the detect-intent session, defaults to a random UUID")
	languageCode := flag.String("language-code", "en-US", "language code of the query")
	audioFilePath := flag.String("audio-file-path", "", "path to the audio file (required)")
	flag.Parse()

	if err := requireFlags(*agent, *audioFilePath); err != nil {
		fmt.Fprintf(os.Stderr, "covis-intent: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	logger := logging.Init("info", "text")

	result, err := dialogflow.DetectIntent(context.Background(), dialogflow.Params{
		Agent:         *agent,
		SessionID:     *sessionID,
		LanguageCode:  *languageCode,
		AudioFilePath: *audioFilePath,
	}, logger)
	if err != nil {
		logger.Error("detect intent failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Session path: %s\n\n", result.SessionPath)
	fmt.Println(strings.Repeat("=", 20))
	fmt.Printf("Query text: %s\n", result.Transcript)
	fmt.Printf("Response text: %s\n", strings.Join(result.Messages, " "))
}

// requireFlags validates the mandatory flags. It runs before any request is
// made, so a usage error never reaches the service.
func requireFlags(agent, audioFilePath string) error {
	switch {
	case agent == "" && audioFilePath == "":
		return errors.New("--agent and --audio-file-path are required")
	case agent == "":
		return errors.New("--agent is required")
	case audioFilePath == "":
		return errors.New("--audio-file-path is required")
	}
	return nil
}
