package audio

import (
	"io"
	"sync"
)

// BufferSource replays a fixed set of captured blocks, then reports io.EOF.
// It stands in for the sound device in tests and offline runs.
type BufferSource struct {
	mu     sync.Mutex
	blocks [][]byte
	rate   int
}

func NewBufferSource(rate int, blocks ...[]byte) *BufferSource {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &BufferSource{blocks: blocks, rate: rate}
}

func (b *BufferSource) Start() error { return nil }
func (b *BufferSource) Stop() error  { return nil }

func (b *BufferSource) ReadBlock() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.blocks) == 0 {
		return nil, io.EOF
	}
	block := b.blocks[0]
	b.blocks = b.blocks[1:]
	return block, nil
}

func (b *BufferSource) SampleRate() int { return b.rate }
func (b *BufferSource) Close() error    { return nil }

// BufferSink collects played audio in memory.
type BufferSink struct {
	mu     sync.Mutex
	data   []byte
	volume int
	rate   int
}

func NewBufferSink(rate int) *BufferSink {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &BufferSink{volume: 100, rate: rate}
}

func (b *BufferSink) Start() error { return nil }
func (b *BufferSink) Stop() error  { return nil }

func (b *BufferSink) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *BufferSink) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

func (b *BufferSink) SampleRate() int { return b.rate }

func (b *BufferSink) Volume() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

func (b *BufferSink) SetVolume(percent int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.volume = percent
}

func (b *BufferSink) Close() error { return nil }

var (
	_ Source = (*BufferSource)(nil)
	_ Sink   = (*BufferSink)(nil)
)
