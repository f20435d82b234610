package assist

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askehill/covis2/pkg/audio"
	"github.com/askehill/covis2/pkg/device"
	"github.com/askehill/covis2/pkg/display"
	"github.com/askehill/covis2/pkg/errorsx"
	"github.com/askehill/covis2/pkg/logging"
	"github.com/askehill/covis2/pkg/metrics"
)

// Controller owns an open conversation: the duplex audio stream, the remote
// endpoint, and the session state carried between turns. Turns run strictly
// one at a time.
type Controller struct {
	stream     audio.Stream
	endpoint   Endpoint
	session    *Session
	dispatcher device.Dispatcher
	display    display.Sink

	displayEnabled bool
	observer       metrics.Observer
	logger         *slog.Logger
}

// ControllerConfig wires the controller's collaborators. Dispatcher, Display
// and Observer are optional.
type ControllerConfig struct {
	Stream         audio.Stream
	Endpoint       Endpoint
	Session        *Session
	Dispatcher     device.Dispatcher
	Display        display.Sink
	DisplayEnabled bool
	Observer       metrics.Observer
	Logger         *slog.Logger
}

func NewController(cfg ControllerConfig) *Controller {
	observer := cfg.Observer
	if observer == nil {
		observer = metrics.NoopObserver{}
	}
	sink := cfg.Display
	if sink == nil {
		sink = display.NopSink{}
	}
	return &Controller{
		stream:         cfg.Stream,
		endpoint:       cfg.Endpoint,
		session:        cfg.Session,
		dispatcher:     cfg.Dispatcher,
		display:        sink,
		displayEnabled: cfg.DisplayEnabled,
		observer:       observer,
		logger:         logging.NewComponentLogger(cfg.Logger, "turn_controller"),
	}
}

// turnState accumulates the per-turn outcome while responses are applied.
type turnState struct {
	id    string
	cont  bool
	tasks []device.Task
}

// ExecuteTurn runs one request/response cycle and reports whether the
// conversation should continue without a fresh wake event. Transport
// failures propagate to the caller; device tasks already dispatched are
// still awaited before the error returns.
func (c *Controller) ExecuteTurn(ctx context.Context) (bool, error) {
	st := &turnState{id: uuid.NewString()}

	// The turn's context ends with the turn, so an abandoned stream never
	// lingers until the transport deadline.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	turn, err := c.endpoint.OpenTurn(ctx)
	if err != nil {
		return false, errorsx.Wrap(err, errorsx.ReasonAssistOpen)
	}

	if err := c.stream.StartRecording(); err != nil {
		_ = turn.CloseSend()
		return false, err
	}
	c.logger.Info("recording audio request")
	c.event(st, "turn_start", 0)

	config := ConfigRequest{
		Language:          c.session.Language,
		SampleRate:        c.stream.SampleRate(),
		Volume:            c.stream.Volume(),
		ConversationState: c.session.State(),
		IsNewConversation: c.session.IsNewConversation(),
		DeviceID:          c.session.DeviceID,
		DeviceModelID:     c.session.DeviceModelID,
	}
	if c.displayEnabled {
		config.ScreenMode = ScreenModePlaying
	}
	// Later turns of this session continue the same conversation.
	c.session.MarkTurnStarted()

	sendDone := make(chan error, 1)
	go func() {
		sendDone <- c.produce(turn, config)
	}()

	var recvErr error
	for {
		resp, err := turn.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			recvErr = errorsx.Wrap(err, errorsx.ReasonAssistRecv)
			break
		}
		c.apply(resp, st)
	}

	// The producer ends once the audio source is exhausted, recording is
	// stopped, or the stream dies under it.
	c.stream.StopRecording()
	sendErr := <-sendDone

	if len(st.tasks) > 0 {
		c.logger.Info("waiting for device executions to complete",
			slog.Int("tasks", len(st.tasks)))
		device.WaitAll(st.tasks)
	}

	c.logger.Info("finished playing assistant response")
	c.stream.StopPlayback()
	c.event(st, "turn_end", boolValue(st.cont))

	if recvErr != nil {
		return false, recvErr
	}
	if sendErr != nil {
		return false, sendErr
	}
	return st.cont, nil
}

// produce sends the configuration request followed by one audio request per
// captured block, then half-closes the stream.
func (c *Controller) produce(turn TurnStream, config ConfigRequest) error {
	if err := turn.Send(config); err != nil {
		_ = turn.CloseSend()
		return c.sendErr(err)
	}
	for {
		block, err := c.stream.ReadBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = turn.CloseSend()
			return err
		}
		if err := turn.Send(AudioRequest{Data: block}); err != nil {
			_ = turn.CloseSend()
			return c.sendErr(err)
		}
	}
	c.logger.Debug("reached end of audio request iteration")
	return turn.CloseSend()
}

// sendErr maps the transport's send-side EOF to nil: the real failure, if
// any, surfaces on the receive side.
func (c *Controller) sendErr(err error) error {
	if err == io.EOF {
		return nil
	}
	return errorsx.Wrap(err, errorsx.ReasonAssistSend)
}

// apply processes one response, applying every present signal independently.
// Unknown or absent signals are no-ops.
func (c *Controller) apply(resp *Response, st *turnState) {
	if resp.EndOfUtterance {
		c.logger.Info("end of audio request detected")
		c.logger.Info("stopping recording")
		c.stream.StopRecording()
		c.event(st, "end_of_utterance", 0)
	}
	if len(resp.Transcripts) > 0 {
		transcript := strings.Join(resp.Transcripts, " ")
		c.logger.Info("transcript of user request", slog.String("transcript", transcript))
		c.observer.RecordEvent(metrics.Event{
			Name:   "transcript",
			Time:   time.Now(),
			Tags:   map[string]string{"turn_id": st.id},
			Fields: map[string]any{"text": transcript},
		})
	}
	if len(resp.AudioOut) > 0 {
		if !c.stream.Playing() {
			// The microphone must never be open while the speaker is
			// active, even when audio arrives before the end-of-utterance
			// marker.
			c.stream.StopRecording()
			if err := c.stream.StartPlayback(); err != nil {
				c.logger.Error("start playback", slog.String("error", err.Error()))
			} else {
				c.logger.Info("playing assistant response")
				c.event(st, "playback_start", 0)
			}
		}
		if _, err := c.stream.Write(resp.AudioOut); err != nil {
			c.logger.Error("write playback audio", slog.String("error", err.Error()))
		}
	}
	if len(resp.ConversationState) > 0 {
		c.logger.Debug("updating conversation state")
		c.session.SetState(resp.ConversationState)
	}
	if resp.VolumePercent != 0 {
		c.logger.Info("setting volume", slog.Int("percent", resp.VolumePercent))
		c.stream.SetVolume(resp.VolumePercent)
		c.event(st, "volume", float64(resp.VolumePercent))
	}
	switch resp.MicMode {
	case MicModeFollowOn:
		st.cont = true
		c.logger.Info("expecting follow-on query from user")
	case MicModeClose:
		st.cont = false
	}
	if len(resp.DeviceAction) > 0 && c.dispatcher != nil {
		var command map[string]any
		if err := json.Unmarshal(resp.DeviceAction, &command); err != nil {
			c.logger.Warn("device action payload not valid JSON",
				slog.String("error", errorsx.Wrap(err, errorsx.ReasonDeviceActionParse).Error()))
		} else if tasks := c.dispatcher.Dispatch(command); len(tasks) > 0 {
			st.tasks = append(st.tasks, tasks...)
			c.event(st, "device_dispatch", float64(len(tasks)))
		}
	}
	if c.displayEnabled && len(resp.ScreenOut) > 0 {
		if err := c.display.Render(resp.ScreenOut); err != nil {
			c.logger.Warn("render screen payload", slog.String("error", err.Error()))
		}
	}
	if resp.SupplementalText != "" {
		c.logger.Debug("supplemental display text", slog.String("text", resp.SupplementalText))
	}
}

// Run executes turns until one reports that the conversation is done.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		cont, err := c.ExecuteTurn(ctx)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		c.logger.Info("continuing conversation")
	}
}

func (c *Controller) event(st *turnState, name string, value float64) {
	c.observer.RecordEvent(metrics.Event{
		Name:  name,
		Time:  time.Now(),
		Value: value,
		Tags:  map[string]string{"turn_id": st.id},
	})
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
