package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/haivivi/spotkit/pkg/cli"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage model profiles",
	Long: `Manage named model profiles.

A profile bundles a .tflite model path with its output labels and
detection parameters. The run and serve commands use the current
profile unless told otherwise.`,
}

var profileAddFlags struct {
	model         string
	labels        []string
	threshold     uint8
	windowMs      int
	suppressionMs int
	minCount      int
	threads       int
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		p := &cli.Profile{
			Model:              profileAddFlags.model,
			Labels:             profileAddFlags.labels,
			DetectionThreshold: profileAddFlags.threshold,
			AverageWindowMs:    profileAddFlags.windowMs,
			SuppressionMs:      profileAddFlags.suppressionMs,
			MinimumCount:       profileAddFlags.minCount,
			Threads:            profileAddFlags.threads,
		}
		if err := cfg.AddProfile(args[0], p); err != nil {
			return err
		}
		if cfg.CurrentProfile == "" {
			if err := cfg.UseProfile(args[0]); err != nil {
				return err
			}
		}
		cli.PrintSuccess("profile %q saved", args[0])
		return nil
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <name> <file>",
	Short: "Import a profile from a YAML or JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		var p cli.Profile
		if err := cli.LoadFile(args[1], &p); err != nil {
			return err
		}
		if err := cfg.AddProfile(args[0], &p); err != nil {
			return err
		}
		if cfg.CurrentProfile == "" {
			if err := cfg.UseProfile(args[0]); err != nil {
				return err
			}
		}
		cli.PrintSuccess("profile %q imported from %s", args[0], args[1])
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseProfile(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("current profile is %q", args[0])
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		paths, err := cli.NewPaths()
		if err != nil {
			return err
		}
		names := cfg.ListProfiles()
		sort.Strings(names)
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentProfile {
				marker = "* "
			}
			p := cfg.Profiles[name]
			size := "missing"
			if fi, err := os.Stat(paths.ResolveModel(p.Model)); err == nil {
				size = cli.FormatBytes(fi.Size())
			}
			fmt.Printf("%s%-16s %s [%s] (%d labels)\n", marker, name, p.Model, size, len(p.Labels))
		}
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteProfile(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("profile %q deleted", args[0])
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile (current profile if no name given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		p, err := cfg.ResolveProfile(name)
		if err != nil {
			return err
		}
		return cli.Output(p, cli.OutputOptions{Format: cli.FormatYAML})
	},
}

func init() {
	profileAddCmd.Flags().StringVar(&profileAddFlags.model, "model", "", "model path (.tflite)")
	profileAddCmd.Flags().StringSliceVar(&profileAddFlags.labels, "labels", nil, "category labels in tensor order, silence first")
	profileAddCmd.Flags().Uint8Var(&profileAddFlags.threshold, "threshold", 0, "detection threshold 0-255 (default 200)")
	profileAddCmd.Flags().IntVar(&profileAddFlags.windowMs, "window", 0, "score averaging window in ms (default 1000)")
	profileAddCmd.Flags().IntVar(&profileAddFlags.suppressionMs, "suppression", 0, "re-trigger holdoff in ms (default 1500)")
	profileAddCmd.Flags().IntVar(&profileAddFlags.minCount, "min-count", 0, "minimum results before a decision (default 3)")
	profileAddCmd.Flags().IntVar(&profileAddFlags.threads, "threads", 0, "inference threads (0 = library default)")
	profileAddCmd.MarkFlagRequired("model")
	profileAddCmd.MarkFlagRequired("labels")

	profileCmd.AddCommand(profileAddCmd, profileImportCmd, profileUseCmd, profileListCmd, profileDeleteCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}
