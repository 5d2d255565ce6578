// Package orchestrator drives the per-file tagging pipeline: load,
// extract, classify, transcribe, analyze, assemble, persist. A batch
// run is strictly sequential; failures are isolated per file.
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thaispeech/autotag/audio"
	"github.com/thaispeech/autotag/clients"
	"github.com/thaispeech/autotag/config"
	"github.com/thaispeech/autotag/thai"
)

// Transcriber is the external ASR collaborator. It receives the
// original file path, not the decoded waveform; decoding for
// transcription is the service's concern.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (*clients.Transcription, error)
}

// largeFileWarnBytes triggers a heads-up before slow decodes.
const largeFileWarnBytes = 100 * 1024 * 1024

// Pipeline owns its collaborators explicitly; nothing here is global
// or lazily reinitialized. The ASR client is constructed once and
// reused read-only across all files in a run.
type Pipeline struct {
	cfg        *config.Root
	loader     *audio.Loader
	extractor  *audio.Extractor
	classifier *audio.Classifier
	text       *thai.Analyzer
	assembler  *Assembler
	persister  *Persister
	asr        Transcriber

	log *logrus.Logger
}

// NewPipeline wires the pipeline from configuration. asr may be nil,
// which disables transcription regardless of the per-call flag.
func NewPipeline(cfg *config.Root, asr Transcriber, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}

	lex := thai.DefaultLexicon()
	if cfg.Text.LexiconPath != "" {
		loaded, err := thai.LoadLexicon(cfg.Text.LexiconPath)
		if err != nil {
			log.WithError(err).Warn("lexicon load failed, using built-in keyword lists")
		} else {
			lex = loaded
		}
	}

	if !audio.FFmpegAvailable() {
		log.Warn("ffmpeg not found in PATH - fallback decoding unavailable")
	}

	return &Pipeline{
		cfg:    cfg,
		loader: audio.NewLoader(cfg.Audio.SampleRate, log),
		extractor: audio.NewExtractor(
			cfg.Audio.FrameLength,
			cfg.Audio.HopLength,
			cfg.Audio.SilenceTopDB,
			cfg.Audio.MinPauseSec,
		),
		classifier: audio.NewClassifier(cfg.Thresholds),
		text:       thai.NewAnalyzer(cfg.Text.CodeSwitchPct, lex),
		assembler:  NewAssembler(cfg.ASR.Language),
		persister:  NewPersister(cfg.Paths.Output, cfg.Overwrite),
		asr:        asr,
		log:        log,
	}
}

// ProcessFile runs the whole pipeline for one file and persists the
// record. Load failures are fatal for the file; transcription
// failures only degrade the record to transcript-absent.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, transcribe bool) (*MetadataRecord, error) {
	started := time.Now()
	flog := p.log.WithField("file", filepath.Base(path))

	fi, err := os.Stat(path)
	if err != nil {
		return nil, &audio.LoadError{Path: path, PrimaryErr: err}
	}
	if fi.Size() > largeFileWarnBytes {
		flog.WithField("size_mb", fi.Size()/(1024*1024)).Warn("large file, loading may take a while")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".flac", ".m4a", ".ogg":
	default:
		flog.Warn("unusual audio format, decode may fail")
	}

	loadStart := time.Now()
	w, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}
	flog.WithFields(logrus.Fields{
		"duration_s": w.Duration(),
		"elapsed":    time.Since(loadStart).Round(time.Millisecond),
	}).Info("audio loaded")

	analyzeStart := time.Now()
	fs := p.extractor.Extract(w)
	labels := p.classifier.Classify(fs)
	flog.WithFields(logrus.Fields{
		"snr_db":         fs.SNRDB,
		"noise_level":    labels.NoiseLevel,
		"clarity":        labels.SpeechClarity,
		"speaking_style": labels.SpeakingStyle,
		"voice_activity": fs.VoiceActivityPct,
		"elapsed":        time.Since(analyzeStart).Round(time.Millisecond),
	}).Info("acoustic analysis complete")

	var tr *clients.Transcription
	var ling *thai.Analysis
	switch {
	case !transcribe:
		flog.Debug("transcription disabled")
	case p.asr == nil:
		flog.Debug("no transcription service configured")
	default:
		asrStart := time.Now()
		tr, err = p.asr.Transcribe(ctx, path, p.cfg.ASR.Language)
		if err != nil {
			flog.WithError(err).Warn("transcription failed, continuing without transcript")
			tr = nil
		} else {
			flog.WithFields(logrus.Fields{
				"language": tr.Language,
				"chars":    len(tr.Text),
				"elapsed":  time.Since(asrStart).Round(time.Millisecond),
			}).Info("transcription complete")
		}
		if tr != nil && tr.Text != "" {
			ling = p.text.Analyze(tr.Text)
			flog.WithFields(logrus.Fields{
				"code_switching": ling.CodeSwitching,
				"vocabulary":     ling.VocabularyType,
			}).Info("linguistic analysis complete")
		}
	}

	info := FileInfo{
		Filename:      filepath.Base(path),
		FilePath:      path,
		ProcessedAt:   time.Now(),
		FileSizeBytes: fi.Size(),
	}
	rec := p.assembler.Assemble(info, w, fs, labels, tr, ling)

	outPath, err := p.persister.Write(rec)
	if err != nil {
		return nil, err
	}
	flog.WithFields(logrus.Fields{
		"output":  outPath,
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Info("metadata written")
	return rec, nil
}

// ProcessDirectory tags every file under dir matching pattern. Each
// file runs inside a failure-isolating boundary: an error is recorded
// and the batch continues. The error return covers only enumeration
// problems (a malformed pattern), never per-file failures.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir, pattern string, transcribe bool) ([]*MetadataRecord, *BatchReport, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(matches)

	report := &BatchReport{
		RunID:     uuid.NewString(),
		Attempted: len(matches),
	}
	if len(matches) == 0 {
		p.log.WithFields(logrus.Fields{
			"dir":     dir,
			"pattern": pattern,
		}).Error("no audio files found")
		return nil, report, nil
	}

	p.log.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"dir":     dir,
		"pattern": pattern,
		"files":   len(matches),
	}).Info("batch processing started")

	started := time.Now()
	var records []*MetadataRecord
	for i, path := range matches {
		p.log.WithField("file", filepath.Base(path)).Infof("file %d/%d", i+1, len(matches))
		rec, err := p.ProcessFile(ctx, path, transcribe)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, FileFailure{
				File:    filepath.Base(path),
				Message: err.Error(),
			})
			p.log.WithField("file", filepath.Base(path)).WithError(err).Error("processing failed, continuing with next file")
			continue
		}
		report.Succeeded++
		records = append(records, rec)
	}

	report.Elapsed = time.Since(started)
	report.AvgPer = report.Elapsed / time.Duration(len(matches))

	p.log.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"attempted": report.Attempted,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"elapsed":   report.Elapsed.Round(time.Millisecond),
		"avg_per":   report.AvgPer.Round(time.Millisecond),
	}).Info("batch processing complete")
	return records, report, nil
}
