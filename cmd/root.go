// Package cmd is the CLI surface. It only parses flags, loads
// configuration and hands off to the orchestrator.
package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thaispeech/autotag/clients"
	"github.com/thaispeech/autotag/config"
	"github.com/thaispeech/autotag/orchestrator"
)

var (
	cfgFile         string
	inputDir        string
	singleFile      string
	allFiles        bool
	outputDir       string
	pattern         string
	noTranscription bool
	asrURL          string
)

var rootCmd = &cobra.Command{
	Use:   "autotag",
	Short: "Automated quality tagging for Thai speech datasets",
	Long: `autotag analyzes speech recordings for acoustic quality, optionally
transcribes them through an external ASR service, detects basic
linguistic features in the transcript, and writes one metadata record
per file for later human review.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (default autotag.yaml)")
	f.StringVarP(&inputDir, "input", "i", "", "input directory containing audio files")
	f.StringVarP(&singleFile, "file", "f", "", "process a single file (relative to --input)")
	f.BoolVarP(&allFiles, "all", "a", false, "process all matching files in the input directory")
	f.StringVarP(&outputDir, "output", "o", "", "output directory for metadata files")
	f.StringVar(&pattern, "pattern", "", "file pattern to match (default *.mp3)")
	f.BoolVar(&noTranscription, "no-transcription", false, "disable transcription (faster processing)")
	f.StringVar(&asrURL, "asr-url", "", "transcription service base URL")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("input") {
		cfg.Paths.Input = inputDir
	}
	if cmd.Flags().Changed("output") {
		cfg.Paths.Output = outputDir
	}
	if cmd.Flags().Changed("pattern") {
		cfg.Batch.Pattern = pattern
	}
	if cmd.Flags().Changed("asr-url") {
		cfg.ASR.URL = asrURL
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	var asr orchestrator.Transcriber
	if !noTranscription && cfg.ASR.URL != "" {
		asr = clients.NewASR(cfg.ASR.URL, clients.NewHTTP(cfg.ASR.Timeout()))
	}
	p := orchestrator.NewPipeline(cfg, asr, log)

	ctx := cmd.Context()
	transcribe := !noTranscription

	switch {
	case singleFile != "":
		path := singleFile
		if !filepath.IsAbs(path) && cfg.Paths.Input != "" {
			path = filepath.Join(cfg.Paths.Input, singleFile)
		}
		_, err := p.ProcessFile(ctx, path, transcribe)
		return err
	case allFiles:
		_, _, err := p.ProcessDirectory(ctx, cfg.Paths.Input, cfg.Batch.Pattern, transcribe)
		return err
	default:
		return errors.New("specify either --file or --all")
	}
}
