package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-kws/algorithms/spectral"
)

var filterBankWeights bool

var filterBankCmd = &cobra.Command{
	Use:   "filterbank",
	Short: "Describe the mel filterbank of the log-mel configuration",
	Long: `Print the filterbank shape, the band edge frequencies and FFT bins, and
the bands whose triangles collapse to zero at this FFT resolution.`,
	Args: cobra.NoArgs,
	RunE: runFilterBank,
}

func init() {
	rootCmd.AddCommand(filterBankCmd)

	filterBankCmd.Flags().BoolVar(&filterBankWeights, "weights", false,
		"include the full weight matrix")
}

type filterBankReport struct {
	Shape           [2]int      `json:"shape" yaml:"shape"`
	SampleRate      int         `json:"sample_rate" yaml:"sample_rate"`
	NFFT            int         `json:"n_fft" yaml:"n_fft"`
	FMin            float64     `json:"f_min" yaml:"f_min"`
	FMax            float64     `json:"f_max" yaml:"f_max"`
	EdgeFrequencies []float64   `json:"edge_frequencies" yaml:"edge_frequencies"`
	EdgeBins        []int       `json:"edge_bins" yaml:"edge_bins"`
	DegenerateBands []int       `json:"degenerate_bands" yaml:"degenerate_bands"`
	Weights         [][]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

func runFilterBank(cmd *cobra.Command, args []string) error {
	appCfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	mel := appCfg.LogMel

	fb, err := spectral.NewMelFilterBank(spectral.MelFilterBankConfig{
		SampleRate: mel.SampleRate,
		NFFT:       mel.NFFT,
		NMels:      mel.NMels,
		FMin:       mel.FMin,
		FMax:       mel.EffectiveFMax(),
	})
	if err != nil {
		return err
	}

	report := filterBankReport{
		Shape:           [2]int{fb.NumMels(), fb.NumFreqs()},
		SampleRate:      mel.SampleRate,
		NFFT:            mel.NFFT,
		FMin:            mel.FMin,
		FMax:            mel.EffectiveFMax(),
		EdgeFrequencies: fb.EdgeFrequencies(),
		EdgeBins:        fb.EdgeBins(),
		DegenerateBands: fb.DegenerateBands(),
	}
	if filterBankWeights {
		report.Weights = make([][]float64, fb.NumMels())
		for m := range report.Weights {
			report.Weights[m] = fb.Row(m)
		}
	}

	return writeOutput(cmd.OutOrStdout(), report)
}
