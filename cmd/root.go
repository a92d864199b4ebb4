package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-kws/logging"
)

const envPrefix = "KWFEAT"

var (
	configFile   string
	logLevel     string
	outputFormat string

	v = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kwfeat",
	Short: "Keyword-spotting feature extraction",
	Long: `Compute the fixed-shape feature tensors a keyword-spotting model consumes.

Every clip is conditioned to one second at 16 kHz and turned into either
a log-mel spectrogram [1][124][129][1] in dB, or a raw log-magnitude
STFT [1][124][128][1].

Configuration is read from --config, ./configs/kwfeat.yaml or
$HOME/.config/kwfeat/kwfeat.yaml, and KWFEAT_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		if err := bindFlags(cmd, v); err != nil {
			return err
		}
		if err := checkOutputFormat(); err != nil {
			return err
		}
		return initLogging(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is ./configs/kwfeat.yaml or $HOME/.config/kwfeat/kwfeat.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json",
		"output format (json, yaml)")
}

// initConfig reads in the config file and ENV variables if set
func initConfig() error {
	v = viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "kwfeat"))
		}
		v.SetConfigName("kwfeat")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// bindFlags applies config and environment values to every flag the user
// did not set, then binds the flag to viper.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")

		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key)); err != nil {
			lastErr = err
		}

		if !f.Changed && v.IsSet(key) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(key))); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

func initLogging(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)
	return nil
}

func checkOutputFormat() error {
	switch strings.ToLower(outputFormat) {
	case "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (json, yaml)", outputFormat)
	}
}

// writeOutput encodes value in the selected output format.
func writeOutput(w io.Writer, value any) error {
	if strings.EqualFold(outputFormat, "yaml") {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
