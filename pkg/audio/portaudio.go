package audio

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/askehill/covis2/pkg/logging"
)

// Device is one duplex portaudio stream used for both capture and playback,
// LINEAR16 little-endian mono. Output volume is applied in software by
// scaling samples on write.
type Device struct {
	stream *portaudio.Stream

	sampleRate int
	blockSize  int
	flushSize  int

	in  []int16
	out []int16

	mu      sync.Mutex
	volume  int
	residue []byte

	logger *slog.Logger
}

// DeviceConfig carries the portaudio stream parameters, in bytes for the
// block and flush sizes (two bytes per sample).
type DeviceConfig struct {
	SampleRate int
	BlockSize  int
	FlushSize  int
	Logger     *slog.Logger
}

// OpenDevice initializes portaudio and opens the default duplex stream.
func OpenDevice(cfg DeviceConfig) (*Device, error) {
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	blockSize := cfg.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	flushSize := cfg.FlushSize
	if flushSize <= 0 {
		flushSize = DefaultFlushSize
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	frames := blockSize / DefaultSampleWidth
	d := &Device{
		sampleRate: rate,
		blockSize:  blockSize,
		flushSize:  flushSize,
		in:         make([]int16, frames),
		out:        make([]int16, frames),
		volume:     100,
		logger:     logging.NewComponentLogger(cfg.Logger, "audio_device"),
	}

	stream, err := portaudio.OpenDefaultStream(1, 1, float64(rate), frames, d.in, d.out)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open duplex stream: %w", err)
	}
	d.stream = stream

	d.logger.Info("audio device opened",
		slog.Int("sample_rate", rate),
		slog.Int("block_size", blockSize))
	return d, nil
}

// Start begins the duplex stream. The conversation stream's phase machine
// guarantees Start and Stop calls are matched.
func (d *Device) Start() error {
	return d.stream.Start()
}

func (d *Device) Stop() error {
	if err := d.flush(); err != nil {
		return err
	}
	return d.stream.Stop()
}

// ReadBlock captures one device block and returns it as LINEAR16 bytes.
func (d *Device) ReadBlock() ([]byte, error) {
	if err := d.stream.Read(); err != nil {
		return nil, err
	}
	return samplesToBytes(d.in), nil
}

// Write plays LINEAR16 bytes, buffering any partial block until the next
// write or flush. The scaled copy leaves p untouched.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.residue = append(d.residue, p...)
	for len(d.residue) >= d.blockSize {
		block := d.residue[:d.blockSize]
		d.residue = d.residue[d.blockSize:]
		if err := d.playBlock(block); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// flush pads the buffered tail with silence out to the flush size and plays
// it, so the device drains fully before the stream stops.
func (d *Device) flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.residue) == 0 {
		return nil
	}
	padded := len(d.residue)
	if padded < d.flushSize {
		padded = d.flushSize
	}
	if rem := padded % d.blockSize; rem != 0 {
		padded += d.blockSize - rem
	}
	buf := make([]byte, padded)
	copy(buf, d.residue)
	d.residue = nil
	for off := 0; off < padded; off += d.blockSize {
		if err := d.playBlock(buf[off : off+d.blockSize]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) playBlock(block []byte) error {
	bytesToSamples(block, d.out)
	scaleSamples(d.out, d.volume)
	return d.stream.Write()
}

func (d *Device) SampleRate() int { return d.sampleRate }

func (d *Device) Volume() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

func (d *Device) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	d.mu.Lock()
	d.volume = percent
	d.mu.Unlock()
}

func (d *Device) Close() error {
	err := d.stream.Close()
	if termErr := portaudio.Terminate(); err == nil {
		err = termErr
	}
	return err
}

// scaleSamples applies a 0-100 output volume to LINEAR16 samples in place.
func scaleSamples(samples []int16, volume int) {
	if volume >= 100 {
		return
	}
	for i, s := range samples {
		samples[i] = int16(int(s) * volume / 100)
	}
}

func samplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*DefaultSampleWidth)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*DefaultSampleWidth:], uint16(s))
	}
	return buf
}

func bytesToSamples(p []byte, samples []int16) {
	for i := range samples {
		off := i * DefaultSampleWidth
		if off+1 >= len(p) {
			samples[i] = 0
			continue
		}
		samples[i] = int16(binary.LittleEndian.Uint16(p[off:]))
	}
}

var (
	_ Source = (*Device)(nil)
	_ Sink   = (*Device)(nil)
)
