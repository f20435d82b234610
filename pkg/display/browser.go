package display

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/browser"

	"github.com/askehill/covis2/pkg/errorsx"
	"github.com/askehill/covis2/pkg/logging"
)

// BrowserSink writes each payload to an HTML file and opens it in the system
// browser. The file is rewritten in place so repeated renders reuse one tab
// where the browser allows it.
type BrowserSink struct {
	path   string
	opened bool
	logger *slog.Logger
}

// BrowserSettings configures the sink; Path defaults to a file in the OS
// temp directory.
type BrowserSettings struct {
	Path string `mapstructure:"path"`
}

func NewBrowserSink(settings BrowserSettings, logger *slog.Logger) *BrowserSink {
	path := settings.Path
	if path == "" {
		path = filepath.Join(os.TempDir(), "covis-screen.html")
	}
	return &BrowserSink{
		path:   path,
		logger: logging.NewComponentLogger(logger, "browser_sink"),
	}
}

func (s *BrowserSink) Render(data []byte) error {
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonDisplayRender)
	}
	s.logger.Debug("screen payload written", slog.String("path", s.path))
	if s.opened {
		return nil
	}
	if err := browser.OpenFile(s.path); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonDisplayRender)
	}
	s.opened = true
	return nil
}

var _ Sink = (*BrowserSink)(nil)
