package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/promocanvas/pkg/ledger"
	"github.com/matzehuels/promocanvas/pkg/pipeline"
)

const defaultOutput = "promo.jpg"

// composeOpts holds the command-line flags for the compose command.
type composeOpts struct {
	ids        []string
	fractions  []float64
	width      int
	height     int
	background string
	quality    int
	output     string
	record     bool
	feedback   string
	noCache    bool
}

// composeCommand creates the compose command.
func (c *CLI) composeCommand() *cobra.Command {
	var opts composeOpts

	cmd := &cobra.Command{
		Use:   "compose [identifier...]",
		Short: "Compose up to three product images into a promotional JPEG",
		Long: `Compose fetches the main image of each catalog product and places the
images side by side on the canvas. Identifiers that cannot be resolved are
skipped and reported; the remaining images are still composed.`,
		Example: `  promocanvas compose B0C1H26C46 B09B8V1LZ3 -o promo.jpg
  promocanvas compose --id B0C1H26C46 --fraction 0.4 --background "#f4f4f4"
  promocanvas compose B0C1H26C46 --record --feedback "spring campaign"`,
		Args: cobra.MaximumNArgs(pipeline.MaxIdentifiers),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ids = append(args, opts.ids...)
			return c.runCompose(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.ids, "id", nil, "catalog identifier (repeatable)")
	cmd.Flags().Float64SliceVarP(&opts.fractions, "fraction", "f", nil, "size fraction per slot in [0.1, 0.6] (default 0.25)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "canvas width in pixels (default from config)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "canvas height in pixels (default from config)")
	cmd.Flags().StringVarP(&opts.background, "background", "b", "", "background colour as #rgb or #rrggbb (default from config)")
	cmd.Flags().IntVarP(&opts.quality, "quality", "q", 0, "JPEG quality 1-100 (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", defaultOutput, "output file")
	cmd.Flags().BoolVar(&opts.record, "record", false, "append the composition to the usage ledger")
	cmd.Flags().StringVar(&opts.feedback, "feedback", "", "free-text feedback stored with the ledger record")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the persistent image cache")

	return cmd
}

func (c *CLI) runCompose(cmd *cobra.Command, opts composeOpts) error {
	ctx := cmd.Context()
	popts := c.pipelineOptions(opts)
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	// Open the ledger first so a misconfigured backend fails before any
	// catalog traffic.
	var led *ledger.Ledger
	if opts.record {
		l, closeLedger, err := c.requireLedger(ctx)
		if err != nil {
			return err
		}
		defer closeLedger()
		led = l
	}

	runner, closeRunner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %d product image(s)...", len(popts.Requested())))
	spin.Start()
	result, err := runner.Compose(ctx, popts)
	spin.Stop()
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.output, result.Artifact.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("composition written",
		"resolved", result.Stats.Resolved,
		"requested", result.Stats.Requested,
		"output", opts.output)

	printComposeResult(result, opts.output)

	if led != nil {
		return c.recordComposition(ctx, led, popts.Requested(), opts.feedback)
	}
	return nil
}

// pipelineOptions merges flags over the configured canvas defaults.
func (c *CLI) pipelineOptions(opts composeOpts) pipeline.Options {
	p := c.defaultOptions()
	p.Identifiers = opts.ids
	p.Fractions = opts.fractions
	if opts.width != 0 {
		p.Width = opts.width
	}
	if opts.height != 0 {
		p.Height = opts.height
	}
	if opts.background != "" {
		p.Background = opts.background
	}
	if opts.quality != 0 {
		p.Quality = opts.quality
	}
	return p
}

func (c *CLI) recordComposition(ctx context.Context, led *ledger.Ledger, ids []string, feedback string) error {
	rec, err := led.AppendWithRetry(ctx, ledger.Entry{Identifiers: ids, Feedback: feedback}, 0)
	if err != nil {
		return err
	}
	printSuccess("Recorded composition #%d", rec.ID)
	printDetail("Identifiers: %s", strings.Join(rec.Identifiers, ", "))
	return nil
}

func printComposeResult(result *pipeline.Result, output string) {
	a := result.Artifact
	if result.Stats.Resolved == 0 && result.Stats.Requested > 0 {
		printWarning("No product images could be resolved; wrote a blank canvas")
	} else {
		printSuccess("Wrote %s", output)
	}
	printFile(output)
	printKeyValue("Canvas", fmt.Sprintf("%dx%d", a.Width, a.Height))
	printKeyValue("Size", formatBytes(len(a.Data)))
	for _, p := range result.Placements {
		r := p.Rect()
		printKeyValue(fmt.Sprintf("Slot %d", p.Slot+1),
			fmt.Sprintf("%s %dx%d at (%d, %d)", p.Image.ID, r.Dx(), r.Dy(), r.Min.X, r.Min.Y))
	}
	for _, id := range result.Missing {
		printWarning("Could not resolve %s", id)
	}
}
