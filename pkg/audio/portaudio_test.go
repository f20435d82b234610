package audio

import "testing"

func TestScaleSamples(t *testing.T) {
	samples := []int16{1000, -1000, 0, 32000}
	scaleSamples(samples, 50)
	want := []int16{500, -500, 0, 16000}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], samples[i])
		}
	}
}

func TestScaleSamplesFullVolumeUntouched(t *testing.T) {
	samples := []int16{123, -456}
	scaleSamples(samples, 100)
	if samples[0] != 123 || samples[1] != -456 {
		t.Fatalf("full volume must not change samples, got %v", samples)
	}
}

func TestSampleByteRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768}
	buf := samplesToBytes(in)
	if len(buf) != len(in)*DefaultSampleWidth {
		t.Fatalf("expected %d bytes, got %d", len(in)*DefaultSampleWidth, len(buf))
	}
	out := make([]int16, len(in))
	bytesToSamples(buf, out)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, in[i], out[i])
		}
	}
}

func TestBytesToSamplesPadsShortInput(t *testing.T) {
	out := []int16{7, 7, 7}
	bytesToSamples([]byte{0x01, 0x00}, out)
	if out[0] != 1 || out[1] != 0 || out[2] != 0 {
		t.Fatalf("expected short input zero-padded, got %v", out)
	}
}
