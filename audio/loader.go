package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"github.com/sirupsen/logrus"
)

// fullScale16 is the full-scale value of 16-bit PCM; integer samples
// are normalized to [-1, 1) by dividing by it.
const fullScale16 = 1 << 15

// resampleQuality balances speed against interpolation accuracy for
// beep.Resample; 4 is the library's recommended middle ground.
const resampleQuality = 4

// LoadError reports that a file could not be turned into a waveform.
// It carries both decode path failures plus file context so batch
// logs stay diagnosable.
type LoadError struct {
	Path        string
	Size        int64
	PrimaryErr  error
	FallbackErr error
}

func (e *LoadError) Error() string {
	if e.FallbackErr == nil {
		return fmt.Sprintf("load %s: %v", e.Path, e.PrimaryErr)
	}
	return fmt.Sprintf("load %s (%d bytes): native decode: %v; ffmpeg decode: %v",
		e.Path, e.Size, e.PrimaryErr, e.FallbackErr)
}

func (e *LoadError) Unwrap() error { return e.PrimaryErr }

// Loader decodes audio files into mono waveforms at TargetRate.
// Primary path: pure-Go decoders selected by extension, down-mixed
// and resampled. Fallback path: the ffmpeg binary emitting s16le PCM
// at the target rate.
type Loader struct {
	TargetRate int

	log logrus.FieldLogger
}

func NewLoader(targetRate int, log logrus.FieldLogger) *Loader {
	if targetRate <= 0 {
		targetRate = 16000
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{TargetRate: targetRate, log: log}
}

// FFmpegAvailable reports whether the fallback decoder can run at all.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Load decodes path into a mono waveform at the target rate. A
// zero-length decode yields a valid empty waveform. Both decode paths
// failing, or a missing file, produce a *LoadError.
func (l *Loader) Load(path string) (*Waveform, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, PrimaryErr: err}
	}

	l.log.WithFields(logrus.Fields{
		"file":    path,
		"size_mb": fmt.Sprintf("%.2f", float64(fi.Size())/(1024*1024)),
	}).Debug("loading audio")

	w, perr := l.decodeNative(path)
	if perr == nil {
		return w, nil
	}
	l.log.WithField("file", path).WithError(perr).Warn("native decode failed, trying ffmpeg")

	w, ferr := l.decodeFFmpeg(path)
	if ferr == nil {
		return w, nil
	}
	return nil, &LoadError{Path: path, Size: fi.Size(), PrimaryErr: perr, FallbackErr: ferr}
}

func (l *Loader) decodeNative(path string) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	gain := 1.0
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
		// beep's wav decoder normalizes PCM by the full unsigned
		// range rather than the signed full scale, leaving samples at
		// half amplitude; the mp3/flac/vorbis decoders and the ffmpeg
		// path all produce true full scale.
		gain = 2.0
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	default:
		return nil, fmt.Errorf("no native decoder for %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if int(format.SampleRate) != l.TargetRate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(l.TargetRate), streamer)
	}

	samples, err := drainMono(src)
	if err != nil {
		return nil, err
	}
	if gain != 1.0 {
		for i := range samples {
			samples[i] *= gain
		}
	}
	return &Waveform{Samples: samples, Rate: l.TargetRate}, nil
}

// drainMono pulls the whole stream, averaging the stereo pair into a
// single channel. Decoders replicate mono sources across both
// channels, so the average is lossless there.
func drainMono(src beep.Streamer) ([]float64, error) {
	buf := make([][2]float64, 1024)
	var out []float64
	for {
		n, ok := src.Stream(buf)
		for _, s := range buf[:n] {
			out = append(out, (s[0]+s[1])/2)
		}
		if !ok {
			break
		}
	}
	if err := src.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

func (l *Loader) decodeFFmpeg(path string) (*Waveform, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not available: %w", err)
	}

	cmd := exec.Command(bin,
		"-v", "error",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", strconv.Itoa(l.TargetRate),
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	raw := stdout.Bytes()
	samples := make([]float64, len(raw)/2)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / fullScale16
	}
	return &Waveform{Samples: samples, Rate: l.TargetRate}, nil
}
