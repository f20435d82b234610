package audio

import (
	"io"
	"log/slog"
	"sync"

	"github.com/askehill/covis2/pkg/errorsx"
	"github.com/askehill/covis2/pkg/logging"
)

// ConversationStream composes a capture source and a playback sink (one
// duplex device in production) into the Stream the turn controller uses.
// Captured blocks are re-chunked to iterSize so outbound audio messages stay
// small regardless of the device block size.
type ConversationStream struct {
	source Source
	sink   Sink
	phases phaseMachine

	mu       sync.Mutex
	iterSize int
	pending  []byte
	stopped  bool

	logger *slog.Logger
}

// ConversationConfig carries the stream composition parameters.
type ConversationConfig struct {
	Source   Source
	Sink     Sink
	IterSize int
	Logger   *slog.Logger
}

func NewConversationStream(cfg ConversationConfig) *ConversationStream {
	iter := cfg.IterSize
	if iter <= 0 {
		iter = DefaultIterSize
	}
	return &ConversationStream{
		source:   cfg.Source,
		sink:     cfg.Sink,
		iterSize: iter,
		logger:   logging.NewComponentLogger(cfg.Logger, "conversation_stream"),
	}
}

func (c *ConversationStream) StartRecording() error {
	if err := c.phases.enter(phaseRecording); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonAudioDevice)
	}
	c.mu.Lock()
	c.stopped = false
	c.pending = nil
	c.mu.Unlock()
	if err := c.source.Start(); err != nil {
		c.phases.leave(phaseRecording)
		return errorsx.Wrap(err, errorsx.ReasonAudioDevice)
	}
	c.logger.Debug("recording started")
	return nil
}

func (c *ConversationStream) StopRecording() {
	if !c.phases.leave(phaseRecording) {
		return
	}
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	if err := c.source.Stop(); err != nil {
		c.logger.Warn("stop recording", slog.String("error", err.Error()))
	}
	c.logger.Debug("recording stopped")
}

func (c *ConversationStream) StartPlayback() error {
	if err := c.phases.enter(phasePlaying); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonAudioDevice)
	}
	if err := c.sink.Start(); err != nil {
		c.phases.leave(phasePlaying)
		return errorsx.Wrap(err, errorsx.ReasonAudioDevice)
	}
	c.logger.Debug("playback started")
	return nil
}

func (c *ConversationStream) StopPlayback() {
	if !c.phases.leave(phasePlaying) {
		return
	}
	if err := c.sink.Stop(); err != nil {
		c.logger.Warn("stop playback", slog.String("error", err.Error()))
	}
	c.logger.Debug("playback stopped")
}

// ReadBlock returns the next iterSize bytes of captured audio. It reports
// io.EOF once recording has been stopped and buffered audio is drained.
func (c *ConversationStream) ReadBlock() ([]byte, error) {
	for {
		c.mu.Lock()
		if len(c.pending) > 0 {
			n := c.iterSize
			if n > len(c.pending) {
				n = len(c.pending)
			}
			block := c.pending[:n]
			c.pending = c.pending[n:]
			c.mu.Unlock()
			return block, nil
		}
		stopped := c.stopped
		c.mu.Unlock()

		if stopped {
			return nil, io.EOF
		}

		raw, err := c.source.ReadBlock()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			// A read in flight when recording stops surfaces the device's
			// stopped-stream error; the contract is a clean EOF.
			c.mu.Lock()
			stopped = c.stopped
			c.mu.Unlock()
			if stopped {
				return nil, io.EOF
			}
			return nil, errorsx.Wrap(err, errorsx.ReasonAudioDevice)
		}
		c.mu.Lock()
		c.pending = append(c.pending, raw...)
		c.mu.Unlock()
	}
}

func (c *ConversationStream) Write(p []byte) (int, error) {
	n, err := c.sink.Write(p)
	if err != nil {
		return n, errorsx.Wrap(err, errorsx.ReasonAudioDevice)
	}
	return n, nil
}

func (c *ConversationStream) SampleRate() int { return c.source.SampleRate() }

func (c *ConversationStream) Volume() int { return c.sink.Volume() }

func (c *ConversationStream) SetVolume(percent int) {
	c.sink.SetVolume(percent)
	c.logger.Info("volume updated", slog.Int("percent", percent))
}

func (c *ConversationStream) Recording() bool { return c.phases.in(phaseRecording) }

func (c *ConversationStream) Playing() bool { return c.phases.in(phasePlaying) }

func (c *ConversationStream) Close() error {
	c.StopRecording()
	c.StopPlayback()
	err := c.source.Close()
	// One duplex device registered as both source and sink must only be
	// closed once.
	if any(c.sink) != any(c.source) {
		if sinkErr := c.sink.Close(); sinkErr != nil && err == nil {
			err = sinkErr
		}
	}
	return errorsx.Wrap(err, errorsx.ReasonAudioDevice)
}

var _ Stream = (*ConversationStream)(nil)
