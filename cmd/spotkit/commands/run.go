package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/spotkit/pkg/audio/pcm"
	"github.com/haivivi/spotkit/pkg/audio/resampler"
	"github.com/haivivi/spotkit/pkg/audio/wav"
	"github.com/haivivi/spotkit/pkg/cli"
	"github.com/haivivi/spotkit/pkg/kws"
)

var runFlags struct {
	profile       string
	model         string
	labels        []string
	threshold     uint8
	windowMs      int
	suppressionMs int
	minCount      int
	threads       int

	raw    bool
	rate   int
	stereo bool

	all    bool
	format string
}

var runCmd = &cobra.Command{
	Use:   "run [audio-file]",
	Short: "Spot keywords in an audio file or stream",
	Long: `Spot keywords in an audio file or stream.

The input is a WAV file by default; with --raw it is headerless
little-endian 16-bit PCM described by --rate and --stereo. "-" (or no
argument) reads from stdin. Audio in any rate or channel layout is
converted to the 16kHz mono format the model expects.

By default only fresh triggers are printed; --all prints every decision
the recognizer makes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSpot,
}

func runSpot(cmd *cobra.Command, args []string) error {
	settings, err := resolveRunSettings(cmd)
	if err != nil {
		return err
	}

	in, srcFmt, closeIn, err := openAudioInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	styles := cli.NewStyles(cli.DefaultTheme)
	triggers := 0
	sink := func(r kws.Result) {
		if r.IsNew {
			triggers++
		}
		if !r.IsNew && !runFlags.all {
			return
		}
		switch runFlags.format {
		case "json":
			json.NewEncoder(os.Stdout).Encode(eventFromResult(r))
		case "yaml":
			cli.Output(eventFromResult(r), cli.OutputOptions{Format: cli.FormatYAML})
		default:
			fmt.Println(styles.RenderEvent(r.Time, r.Label, r.Score, r.IsNew))
		}
	}

	sp, err := newSpotter(settings, sink)
	if err != nil {
		return err
	}
	defer sp.Close()

	rs, err := resampler.New(in, srcFmt, sp.Cfg.SampleRate)
	if err != nil {
		return err
	}
	defer rs.Close()

	// Feed in 100ms chunks of the pipeline's native format.
	buf := make([]byte, pcm.L16Mono16K.BytesInDuration(100*time.Millisecond))
	if _, err := io.CopyBuffer(sp.Pipe, rs, buf); err != nil {
		return fmt.Errorf("processing audio: %w", err)
	}

	if runFlags.format == "" || runFlags.format == "text" {
		cli.PrintSuccess("%d trigger(s) in %s of audio",
			triggers, cli.FormatDuration(sp.Pipe.Pos().Milliseconds()))
	}
	return nil
}

// resolveRunSettings merges the selected profile (if any) with command-line
// overrides. With no profile and no current profile, --model and --labels
// must be given.
func resolveRunSettings(cmd *cobra.Command) (*spotSettings, error) {
	var settings *spotSettings

	useProfile := runFlags.profile != "" || runFlags.model == ""
	if useProfile {
		cfg, err := getConfig()
		if err != nil {
			return nil, err
		}
		p, err := cfg.ResolveProfile(runFlags.profile)
		if err != nil {
			if runFlags.model == "" {
				return nil, fmt.Errorf("no model: %w (set --model or add a profile)", err)
			}
			settings = &spotSettings{}
		} else if settings, err = settingsFromProfile(p); err != nil {
			return nil, err
		}
	} else {
		settings = &spotSettings{}
	}

	if runFlags.model != "" {
		settings.Model = runFlags.model
	}
	if len(runFlags.labels) > 0 {
		settings.Labels = runFlags.labels
	}
	if cmd.Flags().Changed("threshold") {
		settings.Threshold = runFlags.threshold
	}
	if cmd.Flags().Changed("window") {
		settings.WindowMs = runFlags.windowMs
	}
	if cmd.Flags().Changed("suppression") {
		settings.SuppressionMs = runFlags.suppressionMs
	}
	if cmd.Flags().Changed("min-count") {
		settings.MinCount = runFlags.minCount
	}
	if cmd.Flags().Changed("threads") {
		settings.Threads = runFlags.threads
	}

	if settings.Model == "" {
		return nil, fmt.Errorf("no model configured (set --model or add a profile)")
	}
	if len(settings.Labels) == 0 {
		return nil, fmt.Errorf("no labels configured (set --labels or add a profile)")
	}
	return settings, nil
}

// openAudioInput opens the audio source and determines its format. WAV
// input takes the format from the header; raw input takes it from flags.
func openAudioInput(args []string) (io.Reader, resampler.Format, func(), error) {
	var src io.Reader = os.Stdin
	closeFn := func() {}

	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, resampler.Format{}, nil, err
		}
		src = f
		closeFn = func() { f.Close() }
	}

	if runFlags.raw {
		return src, resampler.Format{SampleRate: runFlags.rate, Stereo: runFlags.stereo}, closeFn, nil
	}

	wr, err := wav.NewReader(src)
	if err != nil {
		closeFn()
		return nil, resampler.Format{}, nil, err
	}
	return wr, resampler.Format{SampleRate: wr.SampleRate, Stereo: wr.Channels == 2}, closeFn, nil
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.profile, "profile", "p", "", "profile name (default: current profile)")
	runCmd.Flags().StringVar(&runFlags.model, "model", "", "model path, overrides the profile")
	runCmd.Flags().StringSliceVar(&runFlags.labels, "labels", nil, "category labels, overrides the profile")
	runCmd.Flags().Uint8Var(&runFlags.threshold, "threshold", 0, "detection threshold 0-255")
	runCmd.Flags().IntVar(&runFlags.windowMs, "window", 0, "score averaging window in ms")
	runCmd.Flags().IntVar(&runFlags.suppressionMs, "suppression", 0, "re-trigger holdoff in ms")
	runCmd.Flags().IntVar(&runFlags.minCount, "min-count", 0, "minimum results before a decision")
	runCmd.Flags().IntVar(&runFlags.threads, "threads", 0, "inference threads")

	runCmd.Flags().BoolVar(&runFlags.raw, "raw", false, "input is headerless 16-bit little-endian PCM")
	runCmd.Flags().IntVar(&runFlags.rate, "rate", 16000, "raw input sample rate")
	runCmd.Flags().BoolVar(&runFlags.stereo, "stereo", false, "raw input is stereo")

	runCmd.Flags().BoolVar(&runFlags.all, "all", false, "print every decision, not only triggers")
	runCmd.Flags().StringVar(&runFlags.format, "format", "", "output format: text, json, yaml")

	rootCmd.AddCommand(runCmd)
}
