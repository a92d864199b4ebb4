package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
	"github.com/RyanBlaney/sonido-kws/algorithms/temporal"
	"github.com/RyanBlaney/sonido-kws/features/config"
	"github.com/RyanBlaney/sonido-kws/features/extractors"
	"github.com/RyanBlaney/sonido-kws/logging"
	"github.com/RyanBlaney/sonido-kws/transcode"
)

var (
	extractVariant string
	extractSummary bool
	extractWorkers int
	extractTimeout time.Duration
	extractSilence float64
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags] FILE...",
	Short: "Extract feature tensors from audio files",
	Long: `Decode each file to mono 16 kHz, condition it to one second and print
its feature tensor.

WAV files are decoded in-process; other formats are decoded with ffmpeg.
Files are extracted in parallel.

Examples:
  # Log-mel tensor as JSON
  kwfeat extract yes.wav

  # Per-file statistics of the log-STFT variant, as YAML
  kwfeat extract --variant logstft --summary -o yaml yes.wav no.mp3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractVariant, "variant", string(config.VariantLogMel),
		"feature variant (logmel, logstft)")
	extractCmd.Flags().BoolVar(&extractSummary, "summary", false,
		"print shape and value statistics instead of the tensor")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0,
		"parallel extractions (0 = config workers, or one per CPU)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 0,
		"overall timeout (0 = none)")
	extractCmd.Flags().Float64Var(&extractSilence, "silence-db", -40,
		"frames below this RMS level (dBFS) count as silent in --summary")
}

// extractResult is the per-file output of the extract command
type extractResult struct {
	File     string          `json:"file" yaml:"file"`
	Variant  config.Variant  `json:"variant" yaml:"variant"`
	Shape    [4]int          `json:"shape" yaml:"shape"`
	Summary  *common.Stats   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Level    *temporal.Level `json:"level,omitempty" yaml:"level,omitempty"`
	Features [][]float64     `json:"features,omitempty" yaml:"features,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	appCfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	variant, err := config.ParseVariant(extractVariant)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, extractTimeout)
		defer cancel()
	}

	ex, err := extractors.NewExtractorFactory(&appCfg.LogMel, &appCfg.LogSTFT).CreateExtractor(variant)
	if err != nil {
		return err
	}

	clips := make([][]float32, len(args))
	for i, path := range args {
		clips[i], err = transcode.LoadClip(ctx, path, &appCfg.Decoder)
		if err != nil {
			return err
		}
	}

	workers := extractWorkers
	if workers == 0 {
		workers = appCfg.Workers
	}

	start := time.Now()
	tensors, err := extractors.ExtractBatch(ctx, ex, clips, workers)
	if err != nil {
		return fmt.Errorf("extraction interrupted: %w", err)
	}
	logging.Info("Extraction finished", logging.Fields{
		"files":    len(args),
		"variant":  ex.Variant(),
		"duration": time.Since(start).String(),
	})

	// 25 ms frames, 10 ms hop
	energy := temporal.NewEnergy(appCfg.Decoder.TargetSampleRate/40, appCfg.Decoder.TargetSampleRate/100)

	results := make([]extractResult, len(tensors))
	for i, tensor := range tensors {
		results[i] = extractResult{
			File:    args[i],
			Variant: ex.Variant(),
			Shape:   tensor.Shape(),
		}
		if extractSummary {
			stats := common.Summarize(toFloat64(tensor.Flatten()))
			results[i].Summary = &stats
			level := energy.ClipLevel(common.ConditionWaveform(clips[i], appCfg.Decoder.TargetSampleRate), extractSilence)
			results[i].Level = &level
		} else {
			results[i].Features = tensor.Matrix()
		}
	}

	return writeOutput(cmd.OutOrStdout(), results)
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, x := range values {
		out[i] = float64(x)
	}
	return out
}
