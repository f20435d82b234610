// Package audio provides the duplex conversation stream: microphone capture
// and speaker playback over one sound device, with the guarantee that the
// microphone is never open while the speaker is active.
package audio

import (
	"fmt"
	"sync"
)

// Default device parameters for LINEAR16 capture and playback.
const (
	DefaultSampleRate  = 16000
	DefaultSampleWidth = 2
	DefaultBlockSize   = 6400
	DefaultFlushSize   = 25600
	DefaultIterSize    = 3200
)

// Stream is the duplex audio surface the turn controller drives.
type Stream interface {
	StartRecording() error
	// StopRecording is idempotent.
	StopRecording()
	StartPlayback() error
	// StopPlayback is idempotent.
	StopPlayback()
	// ReadBlock returns the next block of captured audio, or io.EOF once the
	// source is exhausted or recording has been stopped.
	ReadBlock() ([]byte, error)
	Write(p []byte) (int, error)
	SampleRate() int
	Volume() int
	SetVolume(percent int)
	Recording() bool
	Playing() bool
	Close() error
}

// Source produces captured audio blocks.
type Source interface {
	Start() error
	Stop() error
	ReadBlock() ([]byte, error)
	SampleRate() int
	Close() error
}

// Sink consumes playback audio.
type Sink interface {
	Start() error
	Stop() error
	Write(p []byte) (int, error)
	SampleRate() int
	Volume() int
	SetVolume(percent int)
	Close() error
}

type phase int

const (
	phaseIdle phase = iota
	phaseRecording
	phasePlaying
)

func (p phase) String() string {
	switch p {
	case phaseRecording:
		return "RECORDING"
	case phasePlaying:
		return "PLAYING"
	default:
		return "IDLE"
	}
}

// phaseMachine guards the recording/playback transitions. Recording and
// playback are mutually exclusive states; a transition into one is only valid
// from idle, so callers must stop the other first.
type phaseMachine struct {
	mu      sync.Mutex
	current phase
}

func (m *phaseMachine) enter(to phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == to {
		return nil
	}
	if m.current != phaseIdle {
		return fmt.Errorf("audio: cannot enter %s while %s", to, m.current)
	}
	m.current = to
	return nil
}

// leave returns to idle if the machine is in the given phase; it reports
// whether a transition happened, so stops stay idempotent.
func (m *phaseMachine) leave(from phase) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != from {
		return false
	}
	m.current = phaseIdle
	return true
}

func (m *phaseMachine) in(p phase) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current == p
}
