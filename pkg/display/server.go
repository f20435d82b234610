package display

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/askehill/covis2/pkg/logging"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>covis</title></head>
<body>
<div id="screen"></div>
<script>
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = (ev) => { document.getElementById("screen").innerHTML = ev.data; };
</script>
</body>
</html>`

// PushServer serves a page on localhost and pushes each display payload to
// connected browsers over a websocket. Render never blocks on a slow client;
// payloads are dropped when a client's buffer is full.
type PushServer struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	logger     *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// PushServerSettings configures the listen address, default 127.0.0.1:8433.
type PushServerSettings struct {
	Addr string `mapstructure:"addr"`
}

func NewPushServer(settings PushServerSettings, logger *slog.Logger) *PushServer {
	addr := settings.Addr
	if addr == "" {
		addr = "127.0.0.1:8433"
	}

	s := &PushServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		logger:  logging.NewComponentLogger(logger, "display_server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start listens in the background and returns once the listener is bound.
func (s *PushServer) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("display server listening", slog.String("addr", ln.Addr().String()))
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("display server stopped", slog.String("error", err.Error()))
		}
	}()
	return nil
}

func (s *PushServer) Close() error {
	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.mu.Unlock()
	return s.httpServer.Close()
}

// Render broadcasts the payload to all connected clients and remembers it for
// clients that connect later.
func (s *PushServer) Render(data []byte) error {
	payload := append([]byte(nil), data...)

	s.mu.Lock()
	s.last = payload
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			s.logger.Warn("display client buffer full, payload dropped")
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *PushServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

func (s *PushServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 8)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	if len(s.last) > 0 {
		c.send <- s.last
	}
	s.mu.Unlock()

	go s.writeLoop(c)
	go s.readLoop(c)
}

func (s *PushServer) writeLoop(c *client) {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.drop(c)
			return
		}
	}
	_ = c.conn.Close()
}

// readLoop drains control frames and detects disconnects.
func (s *PushServer) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.drop(c)
			return
		}
	}
}

func (s *PushServer) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	_ = c.conn.Close()
}

var _ Sink = (*PushServer)(nil)
