package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Segment is one time-aligned piece of a transcription.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the ASR service response: full text, the language
// it detected, and optional time-aligned segments.
type Transcription struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// ASR is a client for a whisper-style transcription service. The
// original audio file is uploaded as-is; decoding happens on the
// service side.
type ASR struct {
	h       *HTTP
	baseURL string
}

func NewASR(baseURL string, h *HTTP) *ASR {
	return &ASR{h: h, baseURL: strings.TrimRight(baseURL, "/")}
}

// Transcribe posts the audio file to /transcribe with a language
// hint. Callers treat any error as "no transcript", never as fatal
// for the file.
func (a *ASR) Transcribe(ctx context.Context, audioPath, language string) (*Transcription, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if language != "" {
		if err = w.WriteField("language", language); err != nil {
			return nil, err
		}
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := a.h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("asr %s: %s", resp.Status, string(body))
	}

	var out Transcription
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("asr decode: %w", err)
	}
	out.Text = strings.TrimSpace(out.Text)
	if out.Language == "" {
		out.Language = language
	}
	return &out, nil
}
