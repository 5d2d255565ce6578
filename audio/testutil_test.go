package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// sine generates a pure tone. Amplitude is linear full-scale.
func sine(freq, amp float64, rate int, seconds float64) []float64 {
	n := int(seconds * float64(rate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2.0*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

// constant generates a flat signal, handy for exact RMS expectations.
func constant(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// noise generates deterministic pseudo-white noise via an LCG so
// tests stay reproducible without seeding math/rand.
func noise(amp float64, n int) []float64 {
	out := make([]float64, n)
	state := uint64(0x2545F4914F6CDD1D)
	for i := range out {
		state = state*6364136223846793005 + 1442695040888963407
		out[i] = amp * (float64(state>>11)/float64(1<<53)*2.0 - 1.0)
	}
	return out
}

// writeTestWAV writes a 16-bit PCM mono WAV file for loader tests.
func writeTestWAV(t *testing.T, dir, name string, samples []float64, rate int) string {
	t.Helper()

	var buf bytes.Buffer
	dataLen := len(samples) * 2
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.Write(&buf, binary.LittleEndian, int16(s*32767))
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write test wav: %v", err)
	}
	return path
}
