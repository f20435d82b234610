package display

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*PushServer, *httptest.Server) {
	t.Helper()
	s := NewPushServer(PushServerSettings{}, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return s, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRenderPushesToConnectedClient(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)

	// The register happens during the upgrade handler; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		n := len(s.clients)
		s.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := s.Render([]byte("<b>hello</b>")); err != nil {
		t.Fatalf("render: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if string(payload) != "<b>hello</b>" {
		t.Fatalf("unexpected payload %q", payload)
	}
}

func TestLateClientReceivesLastPayload(t *testing.T) {
	s, ts := newTestServer(t)

	if err := s.Render([]byte("<i>late</i>")); err != nil {
		t.Fatalf("render: %v", err)
	}

	conn := dialWS(t, ts)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if string(payload) != "<i>late</i>" {
		t.Fatalf("unexpected payload %q", payload)
	}
}

func TestIndexServesPage(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
}
