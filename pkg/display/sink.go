// Package display renders opaque visual payloads the assistant sends
// alongside its audio response.
package display

// Sink receives one raw display payload per render. Implementations treat the
// bytes as opaque HTML.
type Sink interface {
	Render(data []byte) error
}

// NopSink discards payloads; used when display output is disabled.
type NopSink struct{}

func (NopSink) Render([]byte) error { return nil }
