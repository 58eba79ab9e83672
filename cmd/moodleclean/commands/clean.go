package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virtual-educator/moodleclean/internal/logger"
	"github.com/virtual-educator/moodleclean/internal/output"
	"github.com/virtual-educator/moodleclean/pkg/cleaner"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [files...]",
	Short: "Clean pasted HTML files or stdin",
	Long: `Clean runs the normalization pipeline over one or more HTML files,
or over stdin when no files are given.

With a single input the cleaned HTML goes to stdout or the --output
file. With multiple inputs each file is written next to its source
with a .clean.html suffix, or into the --output directory.

Examples:
  # Stdin to stdout
  pbpaste | moodleclean clean

  # Single file, alignment preserved
  moodleclean clean --style-filter alignment page.html

  # Batch with stats on stderr
  moodleclean clean --stats *.html

  # Markdown rendering instead of HTML
  moodleclean clean --format markdown page.html`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()

	// Output settings
	flags.StringP("output", "o", "", "output file, or directory for multiple inputs (default: stdout)")
	flags.String("format", "html", "rendering to emit: html, pretty, compact, markdown")

	// Pipeline settings
	flags.String("preset", "", "start from a preset: minimal, default, strict")
	flags.String("style-filter", "", "style handling: alignment, strip")
	flags.StringSlice("remove", nil, "extra CSS selectors to delete with their content")
	flags.StringSlice("keep", nil, "CSS selectors exempt from --remove")
	flags.Bool("no-headings", false, "disable heading inference")
	flags.Bool("no-empty-prune", false, "keep empty elements")
	flags.Bool("no-tag-allowlist", false, "keep tags outside the safe vocabulary")
	flags.Bool("no-attr-allowlist", false, "keep attributes outside the per-tag allowlist")
	flags.Bool("no-span-unwrap", false, "keep span wrappers")
	flags.Bool("no-whitespace-collapse", false, "keep whitespace runs in text")

	// Stats settings
	flags.Bool("stats", false, "print a human-readable summary per input to stderr")
	flags.String("stats-format", "", "write machine-readable reports: json, jsonl, yaml")
	flags.String("stats-output", "", "file for --stats-format reports (default: stderr)")
}

func runClean(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	cfg, err := buildConfig(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "html", "pretty", "compact", "markdown":
	default:
		err := fmt.Errorf("unknown format: %s", format)
		logError("%v", err)
		return err
	}
	// The rendering the user asked for has to be generated.
	switch format {
	case "pretty":
		cfg.PrettyPrint = true
	case "compact":
		cfg.EmitCompact = true
	case "markdown":
		cfg.EmitMarkdown = true
	}

	inputs, err := gatherInputs(args)
	if err != nil {
		logError("%v", err)
		return err
	}
	logger.Debug("inputs gathered", "count", len(inputs))

	outputPath, _ := cmd.Flags().GetString("output")
	showStats, _ := cmd.Flags().GetBool("stats")

	reportWriter, closeReports, err := buildReportWriter(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer closeReports()

	c := cleaner.New(cfg)
	hadErrors := false

	for _, in := range inputs {
		raw, err := in.read()
		if err != nil {
			logger.Error("failed to read input", "source", in.name, "error", err)
			hadErrors = true
			continue
		}

		result := c.CleanWithStats(string(raw))
		for _, w := range result.Warnings {
			logger.Warn("cleaning warning", "source", in.name, "warning", w.String())
		}

		rendering := pickRendering(result, format)
		if err := writeRendering(in, rendering, outputPath, len(inputs)); err != nil {
			logger.Error("failed to write output", "source", in.name, "error", err)
			hadErrors = true
			continue
		}

		if showStats {
			fmt.Fprintf(os.Stderr, "%s:\n%s", in.name, result.Stats.String())
		}
		if reportWriter != nil {
			if err := reportWriter.Write(output.NewReport(in.name, result)); err != nil {
				logger.Error("failed to write report", "source", in.name, "error", err)
				hadErrors = true
			}
		}

		logger.Debug("input cleaned",
			"source", in.name,
			"input_bytes", result.Stats.InputBytes,
			"output_bytes", result.Stats.OutputBytes,
			"reduction_pct", fmt.Sprintf("%.1f", result.Stats.ReductionPercent()))
	}

	if hadErrors {
		return fmt.Errorf("some inputs failed")
	}
	return nil
}

// buildConfig assembles the pipeline configuration from preset and flags.
func buildConfig(cmd *cobra.Command) (*cleaner.Config, error) {
	preset, _ := cmd.Flags().GetString("preset")

	var cfg *cleaner.Config
	switch preset {
	case "", "default":
		cfg = cleaner.DefaultConfig()
	case "minimal":
		cfg = cleaner.PresetMinimal()
	case "strict":
		cfg = cleaner.PresetStrict()
	default:
		return nil, fmt.Errorf("unknown preset: %s", preset)
	}

	if mode, _ := cmd.Flags().GetString("style-filter"); mode != "" {
		cfg.StyleFilter = cleaner.StyleFilterMode(mode)
	}

	if v, _ := cmd.Flags().GetBool("no-headings"); v {
		cfg.InferHeadings = false
	}
	if v, _ := cmd.Flags().GetBool("no-empty-prune"); v {
		cfg.RemoveEmptyTags = false
	}
	if v, _ := cmd.Flags().GetBool("no-tag-allowlist"); v {
		cfg.EnforceTagAllowlist = false
	}
	if v, _ := cmd.Flags().GetBool("no-attr-allowlist"); v {
		cfg.EnforceAttributeAllowlist = false
	}
	if v, _ := cmd.Flags().GetBool("no-span-unwrap"); v {
		cfg.UnwrapSpans = false
	}
	if v, _ := cmd.Flags().GetBool("no-whitespace-collapse"); v {
		cfg.CollapseWhitespace = false
	}

	remove, _ := cmd.Flags().GetStringSlice("remove")
	keep, _ := cmd.Flags().GetStringSlice("keep")
	if len(remove) > 0 || len(keep) > 0 {
		cfg = cfg.Merge(&cleaner.Config{
			RemoveSelectors: remove,
			KeepSelectors:   keep,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// input is one source to clean: a named file or stdin.
type input struct {
	name string
	path string // empty means stdin
}

func (in input) read() ([]byte, error) {
	if in.path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(in.path)
}

func gatherInputs(args []string) ([]input, error) {
	if len(args) == 0 {
		return []input{{name: "stdin"}}, nil
	}
	inputs := make([]input, 0, len(args))
	for _, arg := range args {
		if arg == "-" {
			inputs = append(inputs, input{name: "stdin"})
			continue
		}
		inputs = append(inputs, input{name: arg, path: arg})
	}
	return inputs, nil
}

// pickRendering selects the requested rendering from the result.
func pickRendering(result *cleaner.Result, format string) string {
	switch format {
	case "pretty":
		return result.Pretty
	case "compact":
		return result.Compact
	case "markdown":
		return result.Markdown
	default:
		return result.Content
	}
}

// writeRendering routes cleaned output to stdout, a file, or a per-input
// file when cleaning a batch.
func writeRendering(in input, rendering, outputPath string, inputCount int) error {
	if outputPath == "" {
		if inputCount == 1 {
			fmt.Println(rendering)
			return nil
		}
		if in.path == "" {
			fmt.Println(rendering)
			return nil
		}
		return os.WriteFile(cleanedName(in.path), []byte(rendering+"\n"), 0o644)
	}

	if inputCount == 1 {
		return os.WriteFile(outputPath, []byte(rendering+"\n"), 0o644)
	}

	// Multiple inputs: outputPath is a directory.
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return err
	}
	base := "stdin.clean.html"
	if in.path != "" {
		base = filepath.Base(cleanedName(in.path))
	}
	return os.WriteFile(filepath.Join(outputPath, base), []byte(rendering+"\n"), 0o644)
}

// cleanedName derives the sibling output name: page.html -> page.clean.html.
func cleanedName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".clean" + ext
}

// buildReportWriter creates the machine-readable stats writer when
// --stats-format is set. The returned close function flushes it.
func buildReportWriter(cmd *cobra.Command) (output.Writer, func(), error) {
	format, _ := cmd.Flags().GetString("stats-format")
	if format == "" {
		return nil, func() {}, nil
	}

	dest := io.Writer(os.Stderr)
	closeFile := func() {}
	if path, _ := cmd.Flags().GetString("stats-output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, err
		}
		dest = f
		closeFile = func() { _ = f.Close() }
	}

	w, err := output.NewWriter(dest, output.Format(format))
	if err != nil {
		closeFile()
		return nil, nil, err
	}

	return w, func() {
		if err := w.Flush(); err != nil {
			logger.Error("failed to flush reports", "error", err)
		}
		closeFile()
	}, nil
}
