package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/spotkit/pkg/cli"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Global configuration (loaded lazily)
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "spotkit",
	Short: "Streaming keyword spotting for continuous audio",
	Long: `spotkit - Spot spoken commands in continuous audio streams.

A small quantized model scans overlapping spectrogram windows of the
incoming audio; scores are averaged over a trailing window, thresholded
and debounced into stable command triggers.

Model profiles bundle a .tflite model with its labels and detection
parameters, stored in ~/.spotkit/config.yaml:

  spotkit profile add micro --model micro_speech.tflite \
    --labels silence,unknown,yes,no
  spotkit profile use micro

Examples:
  # Spot keywords in a WAV file
  spotkit run testdata/yes_no.wav

  # Stream raw 16-bit PCM from a capture pipeline
  arecord -f S16_LE -r 16000 -c 1 -t raw | spotkit run --raw -

  # Serve the spotter over WebSocket
  spotkit serve --addr :8090`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.spotkit/config.yaml)")
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// getConfig loads the CLI configuration on first use.
func getConfig() (*cli.Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	cfg, err := cli.LoadConfigWithPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("config not available: %w", err)
	}
	globalConfig = cfg
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
