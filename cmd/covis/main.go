package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/askehill/covis2/pkg/assist"
	"github.com/askehill/covis2/pkg/audio"
	"github.com/askehill/covis2/pkg/config"
	"github.com/askehill/covis2/pkg/configutil"
	"github.com/askehill/covis2/pkg/credentials"
	"github.com/askehill/covis2/pkg/device"
	"github.com/askehill/covis2/pkg/display"
	"github.com/askehill/covis2/pkg/logging"
	"github.com/askehill/covis2/pkg/observers"
	"github.com/askehill/covis2/pkg/providers/assistant"
	"github.com/askehill/covis2/pkg/runner"
)

func main() {
	configPath := flag.String("config", "", "path to an optional configuration file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("covis exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("exiting now")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	credsPath := cfg.CredentialsPath
	if credsPath == "" {
		var err error
		if credsPath, err = credentials.DefaultPath(); err != nil {
			return err
		}
	}
	tokens, err := credentials.Load(ctx, credsPath, logger)
	if err != nil {
		logger.Error("error loading credentials", slog.String("error", err.Error()))
		logger.Error(credentials.Guidance)
		return err
	}

	identity, err := config.LoadDeviceIdentity(cfg.DeviceConfigPath)
	if err != nil {
		logger.Error("device config not found", slog.String("error", err.Error()))
		return err
	}

	audioDevice, err := audio.OpenDevice(audio.DeviceConfig{
		SampleRate: cfg.Audio.SampleRate,
		BlockSize:  cfg.Audio.BlockSize,
		FlushSize:  cfg.Audio.FlushSize,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to open audio device", slog.String("error", err.Error()))
		return err
	}

	stream := audio.NewConversationStream(audio.ConversationConfig{
		Source:   audioDevice,
		Sink:     audioDevice,
		IterSize: cfg.Audio.IterSize,
		Logger:   logger,
	})
	defer stream.Close()

	sink, closeSink, err := buildSink(cfg.Display, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	dispatcher := device.NewRequestHandler(identity.ID, logger)
	dispatcher.Register("action.devices.commands.OnOff",
		device.LogHandler(logger, "action.devices.commands.OnOff"))

	client, err := assistant.Dial(tokens, assistant.Config{
		Endpoint: cfg.Endpoint,
		Deadline: time.Duration(cfg.DeadlineMS) * time.Millisecond,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	counter := observers.NewCounterObserver()
	controller := assist.NewController(assist.ControllerConfig{
		Stream:         stream,
		Endpoint:       client,
		Session:        assist.NewSession(cfg.LanguageCode, identity.ID, identity.ModelID),
		Dispatcher:     dispatcher,
		Display:        sink,
		DisplayEnabled: cfg.Display.Enabled,
		Observer:       observers.NewMultiObserver(observers.NewLoggerObserver(logger), counter),
		Logger:         logger,
	})

	err = runner.Run(ctx, controller, logger)
	counter.Log(logger)
	return err
}

// buildSink constructs the configured display sink; the returned func
// releases whatever the sink holds open.
func buildSink(cfg config.DisplayConfig, logger *slog.Logger) (display.Sink, func(), error) {
	if !cfg.Enabled {
		return display.NopSink{}, func() {}, nil
	}
	switch cfg.Sink {
	case "server":
		var settings display.PushServerSettings
		if err := configutil.DecodeSettings(cfg.Settings, &settings); err != nil {
			return nil, nil, err
		}
		server := display.NewPushServer(settings, logger)
		if err := server.Start(); err != nil {
			return nil, nil, err
		}
		return server, func() { _ = server.Close() }, nil
	default:
		var settings display.BrowserSettings
		if err := configutil.DecodeSettings(cfg.Settings, &settings); err != nil {
			return nil, nil, err
		}
		return display.NewBrowserSink(settings, logger), func() {}, nil
	}
}
