package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/ironsheep/setcards-mcp/internal/cards"
	"github.com/ironsheep/setcards-mcp/internal/config"
	"github.com/ironsheep/setcards-mcp/internal/detection"
	"github.com/ironsheep/setcards-mcp/internal/diag"
	"github.com/ironsheep/setcards-mcp/internal/imaging"
	"github.com/ironsheep/setcards-mcp/internal/sets"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type detectOptions struct {
	sets    bool
	workers int
}

func newDetectCmd(root *rootOptions) *cobra.Command {
	opts := &detectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <image>...",
		Short: "Detect the cards in one or more photographs and print them as JSON",
		Long: `Detect runs the card detector on every image given and prints one JSON
report per image on stdout. Progress is shown on stderr.

Example:
  setcards-mcp detect --sets table1.jpg table2.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			logger := diag.FromLevel(cfg.Server.LogLevel)
			return runDetect(cmd.Context(), cfg, logger, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&opts.sets, "sets", "s", false, "Also list the valid Sets of each image")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "Number of images processed concurrently")
	return cmd
}

// setReport is one valid Set of an image.
type setReport struct {
	Indices     [3]int `json:"indices"`
	Explanation string `json:"explanation"`
}

// imageReport is the detect output for one image.
type imageReport struct {
	Path  string       `json:"path"`
	Cards []cards.Card `json:"cards"`
	Sets  []setReport  `json:"sets,omitempty"`
	Error string       `json:"error,omitempty"`
}

// runDetect processes paths with at most opts.workers images in flight and
// writes the reports in argument order. An image that cannot be read is
// reported and counted but does not stop the others.
func runDetect(ctx context.Context, cfg *config.Config, logger diag.Logger, paths []string, opts *detectOptions, out, errOut io.Writer) error {
	det := detection.New(cfg.Detection, logger)
	reports := make([]imageReport, len(paths))

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Detecting cards"),
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionShowCount(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = detectFile(det, path, opts.sets)
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()
	fmt.Fprintln(errOut)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

func detectFile(det *detection.Detector, path string, withSets bool) imageReport {
	report := imageReport{Path: path, Cards: []cards.Card{}}

	f, err := os.Open(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	defer f.Close()

	img, _, err := imaging.Decode(f)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Cards = det.DetectCards(img)
	if withSets {
		report.Sets = []setReport{}
		for _, set := range sets.FindAllSets(report.Cards) {
			report.Sets = append(report.Sets, setReport{
				Indices:     set.Indices,
				Explanation: sets.Explain(set.Cards[0], set.Cards[1], set.Cards[2]),
			})
		}
	}
	return report
}
