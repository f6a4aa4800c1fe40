package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how structured results are rendered.
type OutputFormat string

const (
	FormatYAML OutputFormat = "yaml" // default
	FormatJSON OutputFormat = "json"
	FormatRaw  OutputFormat = "raw" // bytes/strings verbatim, YAML otherwise
)

// OutputOptions configures Output.
type OutputOptions struct {
	// Format is the rendering; empty means YAML.
	Format OutputFormat

	// Writer receives the rendered result. Nil means stdout.
	Writer io.Writer
}

// Output renders result in the requested format.
func Output(result any, opts OutputOptions) error {
	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	}

	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML, "":
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("cli: cannot render output: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatRaw:
		switch v := result.(type) {
		case []byte:
			_, err := w.Write(v)
			return err
		case string:
			_, err := io.WriteString(w, v)
			return err
		default:
			return Output(result, OutputOptions{Format: FormatYAML, Writer: w})
		}
	default:
		return fmt.Errorf("cli: unknown output format %q", opts.Format)
	}
}

// Status-line helpers for command output. Errors and verbose chatter go to
// stderr so piped stdout stays machine-readable.

func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

func PrintInfo(format string, args ...any) {
	fmt.Printf("ℹ "+format+"\n", args...)
}

func PrintWarning(format string, args ...any) {
	fmt.Printf("⚠ "+format+"\n", args...)
}

func PrintVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
