package device

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/askehill/covis2/pkg/logging"
)

// HandlerFunc executes one device command with its execution parameters.
type HandlerFunc func(params map[string]any) error

// RequestHandler is a registry-backed Dispatcher for assistant device
// requests. The payload envelope is
// inputs[].payload.commands[].execution[]{command, params}; every execution
// whose command name has a registered handler is started on its own
// goroutine. Unknown commands are skipped, never errors.
type RequestHandler struct {
	deviceID string
	logger   *slog.Logger

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewRequestHandler(deviceID string, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		deviceID: deviceID,
		logger:   logging.NewComponentLogger(logger, "device_handler"),
		handlers: make(map[string]HandlerFunc),
	}
}

// Register installs fn for a command name, replacing any previous handler.
func (h *RequestHandler) Register(command string, fn HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[command] = fn
}

func (h *RequestHandler) Dispatch(command map[string]any) []Task {
	var tasks []Task
	for _, execution := range executions(command) {
		name, _ := execution["command"].(string)
		if name == "" {
			continue
		}
		params, _ := execution["params"].(map[string]any)

		h.mu.RLock()
		fn, ok := h.handlers[name]
		h.mu.RUnlock()
		if !ok {
			h.logger.Info("no handler for device command", slog.String("command", name))
			continue
		}

		task := &handle{done: make(chan struct{})}
		h.logger.Info("device command dispatched",
			slog.String("command", name),
			slog.String("device_id", h.deviceID))
		go func() {
			defer close(task.done)
			if err := fn(params); err != nil {
				h.logger.Error("device command failed",
					slog.String("command", name),
					slog.String("error", err.Error()))
				task.err = err
			}
		}()
		tasks = append(tasks, task)
	}
	return tasks
}

// executions flattens the request envelope down to its execution entries.
func executions(command map[string]any) []map[string]any {
	var out []map[string]any
	inputs, _ := command["inputs"].([]any)
	for _, rawInput := range inputs {
		input, ok := rawInput.(map[string]any)
		if !ok {
			continue
		}
		payload, _ := input["payload"].(map[string]any)
		commands, _ := payload["commands"].([]any)
		for _, rawCmd := range commands {
			cmd, ok := rawCmd.(map[string]any)
			if !ok {
				continue
			}
			execs, _ := cmd["execution"].([]any)
			for _, rawExec := range execs {
				if exec, ok := rawExec.(map[string]any); ok {
					out = append(out, exec)
				}
			}
		}
	}
	return out
}

type handle struct {
	done chan struct{}
	err  error
}

func (t *handle) Wait() { <-t.done }

// Err reports the handler error after Wait has returned.
func (t *handle) Err() error { return t.err }

// LogHandler returns a handler that only reports the command, for device
// traits with no local side effect.
func LogHandler(logger *slog.Logger, command string) HandlerFunc {
	log := logging.NewComponentLogger(logger, "device_handler")
	return func(params map[string]any) error {
		log.Info("device command executed",
			slog.String("command", command),
			slog.String("params", fmt.Sprintf("%v", params)))
		return nil
	}
}

var _ Dispatcher = (*RequestHandler)(nil)
